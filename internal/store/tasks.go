package store

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/taskpad/internal/recurrence"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// ReminderTitle is the notification title used for every task reminder; the
// body carries the task title.
const ReminderTitle = "Task Reminder"

// AddTask creates a task from in and returns a copy of it. The title must be
// non-blank and the recurrence, if any, valid. When the input asks for a
// reminder it is scheduled before the task is stored; a scheduling failure is
// logged and the task is stored without a handle.
func (s *Store) AddTask(ctx context.Context, in types.TaskInput) (types.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Task{}, types.ErrInvalidTitle
	}
	if in.Recurrence != nil {
		if err := in.Recurrence.Validate(); err != nil {
			return types.Task{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Task{}, types.ErrStoreClosed
	}

	now := s.now()
	t := &types.Task{
		TaskID:          generateUUID(),
		Title:           title,
		Description:     in.Description,
		Completed:       in.Completed,
		DueDate:         copyTime(in.DueDate),
		Labels:          s.resolveLabels(in.LabelIDs),
		Subtasks:        []types.Subtask{},
		Comments:        []types.Comment{},
		CreatedAt:       now,
		UpdatedAt:       now,
		ReminderEnabled: in.ReminderEnabled,
		ReminderDate:    copyTime(in.ReminderDate),
	}
	if in.PriorityID != "" {
		t.Priority = s.resolvePriority(in.PriorityID)
	}
	if t.Priority == nil {
		t.Priority = s.defaultPriority()
	}
	if in.Recurrence != nil {
		r := in.Recurrence.Clone()
		t.Recurrence = &r
	}

	if t.ReminderEnabled && t.ReminderDate != nil {
		t.NotificationID = s.scheduleReminder(ctx, t)
	}

	s.tasks = append(s.tasks, t)
	s.persistLocked(types.CollectionTasks)

	s.log.WithFields(log.Fields{
		"task_id":  t.TaskID,
		"reminder": t.NotificationID != "",
	}).Debug("store.task.added")
	return t.Clone(), nil
}

// UpdateTask merges patch into the task with the given ID. Unknown IDs are a
// no-op. Any live reminder is cancelled before the merge; afterwards a new one
// is scheduled if the task still wants a reminder.
func (s *Store) UpdateTask(ctx context.Context, id string, patch types.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	t := s.findTask(id)
	if t == nil {
		return nil
	}
	if err := s.updateLocked(ctx, t, patch); err != nil {
		return err
	}
	s.persistLocked(types.CollectionTasks)
	return nil
}

// updateLocked validates and applies patch to t, reconciling its reminder.
// Caller must hold s.mu and persist afterwards.
func (s *Store) updateLocked(ctx context.Context, t *types.Task, patch types.TaskPatch) error {
	var title string
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
		if title == "" {
			return types.ErrInvalidTitle
		}
	}
	if patch.Recurrence != nil && !patch.ClearRecurrence {
		if err := patch.Recurrence.Validate(); err != nil {
			return err
		}
	}

	s.cancelReminder(ctx, t)

	if patch.Title != nil {
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	switch {
	case patch.ClearPriority:
		t.Priority = nil
	case patch.PriorityID != nil:
		if p := s.resolvePriority(*patch.PriorityID); p != nil {
			t.Priority = p
		}
	}
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		t.DueDate = copyTime(patch.DueDate)
	}
	switch {
	case patch.ClearRecurrence:
		t.Recurrence = nil
	case patch.Recurrence != nil:
		r := patch.Recurrence.Clone()
		t.Recurrence = &r
	}
	if patch.LabelIDs != nil {
		t.Labels = s.resolveLabels(*patch.LabelIDs)
	}
	if patch.ReminderEnabled != nil {
		t.ReminderEnabled = *patch.ReminderEnabled
	}
	switch {
	case patch.ClearReminder:
		t.ReminderEnabled = false
		t.ReminderDate = nil
	case patch.ReminderDate != nil:
		t.ReminderDate = copyTime(patch.ReminderDate)
	}

	t.Touch(s.now())

	if t.WantsReminder() {
		t.NotificationID = s.scheduleReminder(ctx, t)
	}
	return nil
}

// DeleteTask cancels the task's reminder and removes it. Unknown IDs are a
// no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	i := s.findTaskIndex(id)
	if i < 0 {
		return nil
	}
	s.cancelReminder(ctx, s.tasks[i])
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persistLocked(types.CollectionTasks)

	s.log.WithField("task_id", id).Debug("store.task.deleted")
	return nil
}

// ToggleTaskComplete flips the completion flag. Completing a recurring task
// instead advances its due date by one period and keeps it open; a reminder
// keeps the same offset from the due date. When end dates are enforced and
// the next due date falls after the rule's end, the task is completed.
func (s *Store) ToggleTaskComplete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	t := s.findTask(id)
	if t == nil {
		return nil
	}

	patch := s.togglePatch(t)
	if err := s.updateLocked(ctx, t, patch); err != nil {
		return err
	}
	s.persistLocked(types.CollectionTasks)
	return nil
}

func (s *Store) togglePatch(t *types.Task) types.TaskPatch {
	completed := !t.Completed
	if !completed || !t.HasRecurrence() {
		return types.TaskPatch{Completed: &completed}
	}

	base := s.now()
	if t.DueDate != nil {
		base = *t.DueDate
	}
	base = base.In(s.loc)
	next := recurrence.NextDueDate(base, *t.Recurrence)

	if s.enforceEnd && t.Recurrence.Ended(next) {
		s.log.WithFields(log.Fields{
			"task_id":  t.TaskID,
			"next_due": next,
		}).Debug("store.recurrence.ended")
		return types.TaskPatch{Completed: &completed}
	}

	open := false
	patch := types.TaskPatch{Completed: &open, DueDate: &next}
	if t.ReminderDate != nil {
		offset := base.Sub(*t.ReminderDate)
		reminder := next.Add(-offset)
		patch.ReminderDate = &reminder
	}
	s.log.WithFields(log.Fields{
		"task_id":  t.TaskID,
		"next_due": next,
	}).Debug("store.recurrence.advanced")
	return patch
}

// scheduleReminder asks the notifier for a reminder at t.ReminderDate and
// returns the handle, or "" on failure.
func (s *Store) scheduleReminder(ctx context.Context, t *types.Task) string {
	handle, err := s.notifier.Schedule(ctx, t.TaskID, ReminderTitle, t.Title, *t.ReminderDate)
	if err != nil {
		s.log.WithError(err).WithField("task_id", t.TaskID).Warn("store.notify.schedule_failed")
		return ""
	}
	return handle
}

// cancelReminder releases t's live reminder, if any. The handle is cleared
// even when the notifier reports an error.
func (s *Store) cancelReminder(ctx context.Context, t *types.Task) {
	if t.NotificationID == "" {
		return
	}
	if err := s.notifier.Cancel(ctx, t.NotificationID); err != nil {
		s.log.WithError(err).WithFields(log.Fields{
			"task_id": t.TaskID,
			"handle":  t.NotificationID,
		}).Warn("store.notify.cancel_failed")
	}
	t.NotificationID = ""
}

// resolveLabels returns copies of the labels with the given IDs, in the
// order given. Unknown and repeated IDs are dropped.
func (s *Store) resolveLabels(ids []string) []types.Label {
	out := []types.Label{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		for _, l := range s.labels {
			if l.LabelID == id {
				out = append(out, l)
				seen[id] = true
				break
			}
		}
	}
	return out
}

// resolvePriority returns a copy of the priority with the given ID, or nil.
func (s *Store) resolvePriority(id string) *types.Priority {
	for _, p := range s.priorities {
		if p.PriorityID == id {
			p := p
			return &p
		}
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
