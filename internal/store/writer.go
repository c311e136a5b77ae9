package store

import (
	"context"
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// pendingWrite is the latest snapshot of one collection waiting to be saved.
type pendingWrite struct {
	collection string
	records    []json.RawMessage
}

// writer persists collection snapshots on a single goroutine so mutations
// never wait on storage. A newer snapshot of a collection replaces an older
// one still in the queue.
type writer struct {
	persist  types.Persistence
	log      *log.Logger
	strategy string

	mu      sync.Mutex
	pending []pendingWrite

	wake    chan struct{}
	flushc  chan chan struct{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newWriter(persist types.Persistence, logger *log.Logger, strategy string) *writer {
	w := &writer{
		persist:  persist,
		log:      logger,
		strategy: strategy,
		wake:     make(chan struct{}, 1),
		flushc:   make(chan chan struct{}),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue queues a snapshot. With the immediate strategy the writer is woken
// right away; with on_close it waits for flush.
func (w *writer) enqueue(collection string, records []json.RawMessage) {
	w.mu.Lock()
	replaced := false
	for i := range w.pending {
		if w.pending[i].collection == collection {
			w.pending[i].records = records
			replaced = true
			break
		}
	}
	if !replaced {
		w.pending = append(w.pending, pendingWrite{collection: collection, records: records})
	}
	w.mu.Unlock()

	if w.strategy == types.SyncOnClose {
		return
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// queued returns the number of collections waiting to be saved.
func (w *writer) queued() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case done := <-w.flushc:
			w.drain()
			close(done)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		pw := w.pending[0]
		w.pending = w.pending[1:]
		w.mu.Unlock()

		if err := w.persist.Save(context.Background(), pw.collection, pw.records); err != nil {
			w.log.WithError(err).WithFields(log.Fields{
				"collection": pw.collection,
				"records":    len(pw.records),
			}).Error("store.persist.failed")
			continue
		}
		w.log.WithFields(log.Fields{
			"collection": pw.collection,
			"records":    len(pw.records),
		}).Debug("store.persist.saved")
	}
}

// flush blocks until every snapshot queued before the call has been saved.
func (w *writer) flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case w.flushc <- done:
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains the queue and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.once.Do(func() { close(w.quit) })
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
