// Package notify implements the local reminder gateway. Reminders are kept in
// the "reminders" collection of a Persistence backend so that a reminder
// scheduled by one process is delivered by another running Sweep or Start.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Deliverer shows a reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, r types.Reminder) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, r types.Reminder) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, r types.Reminder) error {
	return f(ctx, r)
}

// Options configures a Scheduler.
type Options struct {
	Persistence types.Persistence
	Enabled     bool
	Logger      *log.Logger
	Clock       func() time.Time
}

// Scheduler satisfies types.Notifier.
type Scheduler struct {
	mu      sync.Mutex
	persist types.Persistence
	enabled bool
	log     *log.Logger
	now     func() time.Time
	cron    *cron.Cron
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	s := &Scheduler{
		persist: opts.Persistence,
		enabled: opts.Enabled,
		log:     opts.Logger,
		now:     opts.Clock,
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RequestPermission reports whether reminders are enabled.
func (s *Scheduler) RequestPermission(context.Context) bool {
	return s.enabled
}

// Schedule stores a reminder firing at at and returns its handle.
func (s *Scheduler) Schedule(ctx context.Context, ownerKey, title, body string, at time.Time) (string, error) {
	if !s.enabled {
		return "", types.ErrPermissionDenied
	}
	if at.IsZero() {
		return "", types.ErrInvalidTrigger
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	r := types.Reminder{
		ReminderID: newHandle(),
		OwnerKey:   ownerKey,
		Title:      title,
		Body:       body,
		TriggerAt:  at,
		CreatedAt:  s.now(),
	}
	if err := s.save(ctx, append(pending, r)); err != nil {
		return "", err
	}

	s.log.WithFields(log.Fields{
		"handle":     r.ReminderID,
		"owner":      ownerKey,
		"trigger_at": at,
	}).Debug("notify.scheduled")
	return r.ReminderID, nil
}

// Cancel removes the reminder with the given handle. Unknown handles, such as
// reminders that have already fired, are not an error.
func (s *Scheduler) Cancel(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := pending[:0]
	found := false
	for _, r := range pending {
		if r.ReminderID == handle {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return nil
	}
	if err := s.save(ctx, kept); err != nil {
		return err
	}
	s.log.WithField("handle", handle).Debug("notify.cancelled")
	return nil
}

// Pending returns the reminders that have not fired, in scheduling order.
func (s *Scheduler) Pending(ctx context.Context) ([]types.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Sweep delivers every reminder whose trigger time has passed and removes it.
// A reminder whose delivery fails stays pending for the next sweep. Returns
// the number delivered.
func (s *Scheduler) Sweep(ctx context.Context, d Deliverer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	kept := make([]types.Reminder, 0, len(pending))
	delivered := 0
	for _, r := range pending {
		if !r.Due(now) {
			kept = append(kept, r)
			continue
		}
		if err := d.Deliver(ctx, r); err != nil {
			s.log.WithError(err).WithField("handle", r.ReminderID).Warn("notify.deliver.failed")
			kept = append(kept, r)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return 0, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return delivered, err
	}
	s.log.WithFields(log.Fields{
		"delivered": delivered,
		"pending":   len(kept),
	}).Info("notify.sweep")
	return delivered, nil
}

// Start runs Sweep every interval on a cron schedule until Stop.
func (s *Scheduler) Start(interval time.Duration, d Deliverer) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(fmt.Sprintf("@every %ds", seconds), func() {
		if _, err := s.Sweep(context.Background(), d); err != nil {
			s.log.WithError(err).Error("notify.sweep.failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	return nil
}

// Stop halts the cron schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	ctx := c.Stop()
	<-ctx.Done()
}

func (s *Scheduler) load(ctx context.Context) ([]types.Reminder, error) {
	recs, err := s.persist.Load(ctx, types.CollectionReminders)
	if err != nil {
		return nil, fmt.Errorf("loading reminders: %w", err)
	}
	out := make([]types.Reminder, 0, len(recs))
	for i, raw := range recs {
		var r types.Reminder
		if err := json.Unmarshal(raw, &r); err != nil || r.ReminderID == "" {
			s.log.WithError(err).WithField("index", i).Warn("notify.load.skipped")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Scheduler) save(ctx context.Context, reminders []types.Reminder) error {
	recs := make([]json.RawMessage, 0, len(reminders))
	for _, r := range reminders {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding reminder %s: %w", r.ReminderID, err)
		}
		recs = append(recs, raw)
	}
	if err := s.persist.Save(ctx, types.CollectionReminders, recs); err != nil {
		return fmt.Errorf("saving reminders: %w", err)
	}
	return nil
}

func newHandle() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
