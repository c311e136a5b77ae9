// Package store owns the task, label, and priority collections. It applies
// every mutation under one lock, keeps reminder notifications in step with
// task state, and hands snapshots of changed collections to a background
// writer for persistence.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Options configures a Store. Persistence and Notifier may be nil, in which
// case the store keeps state in memory only or schedules no reminders.
type Options struct {
	Persistence types.Persistence
	Notifier    types.Notifier
	Logger      *log.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Location is the zone dates are loaded into and recurrence is computed
	// in. Defaults to time.Local.
	Location *time.Location

	// SyncStrategy is types.SyncImmediate (default) or types.SyncOnClose.
	SyncStrategy string

	// EnforceRecurrenceEnd completes a recurring task instead of advancing it
	// when the next due date would fall after the rule's end date.
	EnforceRecurrenceEnd bool
}

// Store is the single owner of the in-memory collections.
type Store struct {
	mu     sync.Mutex
	closed bool

	tasks      []*types.Task
	labels     []types.Label
	priorities []types.Priority
	filter     types.FilterOptions

	persist    types.Persistence
	notifier   types.Notifier
	log        *log.Logger
	now        func() time.Time
	loc        *time.Location
	enforceEnd bool
	writer     *writer
}

// New creates a Store. Call Open to load persisted state and Close when done.
func New(opts Options) *Store {
	s := &Store{
		filter:     types.DefaultFilterOptions(),
		persist:    opts.Persistence,
		notifier:   opts.Notifier,
		log:        opts.Logger,
		now:        opts.Clock,
		loc:        opts.Location,
		enforceEnd: opts.EnforceRecurrenceEnd,
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.persist != nil {
		strategy := opts.SyncStrategy
		if strategy == "" {
			strategy = types.SyncImmediate
		}
		s.writer = newWriter(s.persist, s.log, strategy)
	}
	return s
}

// Open loads the tasks, labels, and priorities collections, seeds the
// built-in priorities on first run, and asks the notifier for permission.
// Records that fail to decode are skipped with a warning.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}

	if s.persist != nil {
		var taskRecs, labelRecs, priorityRecs []json.RawMessage
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			taskRecs, err = s.persist.Load(gctx, types.CollectionTasks)
			return err
		})
		g.Go(func() (err error) {
			labelRecs, err = s.persist.Load(gctx, types.CollectionLabels)
			return err
		})
		g.Go(func() (err error) {
			priorityRecs, err = s.persist.Load(gctx, types.CollectionPriorities)
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("loading collections: %w", err)
		}
		s.loadTasks(taskRecs)
		s.loadLabels(labelRecs)
		s.loadPriorities(priorityRecs)
	}

	if s.seedPriorities() {
		s.log.WithField("count", len(s.priorities)).Info("store.priorities.seeded")
		s.persistLocked(types.CollectionPriorities)
	}

	granted := s.notifier.RequestPermission(ctx)
	s.log.WithFields(log.Fields{
		"tasks":      len(s.tasks),
		"labels":     len(s.labels),
		"priorities": len(s.priorities),
		"reminders":  granted,
	}).Debug("store.opened")
	if !granted {
		s.log.Warn("store.notify.permission_denied")
	}
	s.releaseStaleReminders(ctx)
	return nil
}

func (s *Store) loadTasks(recs []json.RawMessage) {
	s.tasks = s.tasks[:0]
	for i, raw := range recs {
		t, err := decodeTask(raw)
		if err != nil {
			s.log.WithError(err).WithFields(log.Fields{
				"collection": types.CollectionTasks,
				"index":      i,
			}).Warn("store.load.skipped")
			continue
		}
		localize(t, s.loc)
		s.tasks = append(s.tasks, t)
	}
}

// releaseStaleReminders cancels handles held by tasks that no longer want a
// reminder, such as one persisted with the reminder turned off.
func (s *Store) releaseStaleReminders(ctx context.Context) {
	released := 0
	for _, t := range s.tasks {
		if t.NotificationID == "" || t.WantsReminder() {
			continue
		}
		s.cancelReminder(ctx, t)
		released++
	}
	if released == 0 {
		return
	}
	s.log.WithField("count", released).Info("store.reminders.released")
	s.persistLocked(types.CollectionTasks)
}

func (s *Store) loadLabels(recs []json.RawMessage) {
	s.labels = s.labels[:0]
	for i, raw := range recs {
		l, err := decodeLabel(raw)
		if err != nil {
			s.log.WithError(err).WithFields(log.Fields{
				"collection": types.CollectionLabels,
				"index":      i,
			}).Warn("store.load.skipped")
			continue
		}
		s.labels = append(s.labels, l)
	}
}

func (s *Store) loadPriorities(recs []json.RawMessage) {
	s.priorities = s.priorities[:0]
	for i, raw := range recs {
		p, err := decodePriority(raw)
		if err != nil {
			s.log.WithError(err).WithFields(log.Fields{
				"collection": types.CollectionPriorities,
				"index":      i,
			}).Warn("store.load.skipped")
			continue
		}
		s.priorities = append(s.priorities, p)
	}
}

// Flush blocks until every snapshot handed to the background writer has been
// saved, or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.flush(ctx)
}

// Close flushes pending writes and stops the background writer. Further
// mutations return ErrStoreClosed. Close is idempotent.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.writer == nil {
		return nil
	}
	return s.writer.close(ctx)
}

// persistLocked encodes the named collections and queues them for saving.
// Caller must hold s.mu.
func (s *Store) persistLocked(collections ...string) {
	if s.writer == nil {
		return
	}
	for _, c := range collections {
		records, err := s.snapshot(c)
		if err != nil {
			s.log.WithError(err).WithField("collection", c).Error("store.encode.failed")
			continue
		}
		s.writer.enqueue(c, records)
	}
}

func (s *Store) snapshot(collection string) ([]json.RawMessage, error) {
	switch collection {
	case types.CollectionTasks:
		out := make([]json.RawMessage, 0, len(s.tasks))
		for _, t := range s.tasks {
			raw, err := encodeTask(t)
			if err != nil {
				return nil, fmt.Errorf("encoding task %s: %w", t.TaskID, err)
			}
			out = append(out, raw)
		}
		return out, nil
	case types.CollectionLabels:
		out := make([]json.RawMessage, 0, len(s.labels))
		for _, l := range s.labels {
			raw, err := encodeLabel(l)
			if err != nil {
				return nil, fmt.Errorf("encoding label %s: %w", l.LabelID, err)
			}
			out = append(out, raw)
		}
		return out, nil
	case types.CollectionPriorities:
		out := make([]json.RawMessage, 0, len(s.priorities))
		for _, p := range s.priorities {
			raw, err := encodePriority(p)
			if err != nil {
				return nil, fmt.Errorf("encoding priority %s: %w", p.PriorityID, err)
			}
			out = append(out, raw)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
}

// Task returns a copy of the task with the given ID.
func (s *Store) Task(id string) (types.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTask(id)
	if t == nil {
		return types.Task{}, false
	}
	return t.Clone(), true
}

// Tasks returns copies of every task in collection order.
func (s *Store) Tasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Labels returns a copy of the label collection.
func (s *Store) Labels() []types.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Label{}, s.labels...)
}

// Priorities returns a copy of the priority collection.
func (s *Store) Priorities() []types.Priority {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Priority{}, s.priorities...)
}

func (s *Store) findTask(id string) *types.Task {
	for _, t := range s.tasks {
		if t.TaskID == id {
			return t
		}
	}
	return nil
}

func (s *Store) findTaskIndex(id string) int {
	for i, t := range s.tasks {
		if t.TaskID == id {
			return i
		}
	}
	return -1
}

// generateUUID returns a time-ordered UUID v7, falling back to v4.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// noopNotifier stands in when no notifier is configured.
type noopNotifier struct{}

func (noopNotifier) RequestPermission(context.Context) bool { return false }

func (noopNotifier) Schedule(context.Context, string, string, string, time.Time) (string, error) {
	return "", types.ErrPermissionDenied
}

func (noopNotifier) Cancel(context.Context, string) error { return nil }
