package types

import "time"

// Task is the central entity: a titled to-do item with optional schedule,
// priority, labels, nested subtasks and comments, and an optional reminder.
type Task struct {
	TaskID          string      `json:"task_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Completed       bool        `json:"completed"`
	Priority        *Priority   `json:"priority,omitempty"`
	DueDate         *time.Time  `json:"due_date,omitempty"`
	Recurrence      *Recurrence `json:"recurrence,omitempty"`
	Labels          []Label     `json:"labels"`
	Subtasks        []Subtask   `json:"subtasks"`
	Comments        []Comment   `json:"comments"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	ReminderEnabled bool        `json:"reminder_enabled"`
	ReminderDate    *time.Time  `json:"reminder_date,omitempty"`

	// NotificationID is the handle returned by the notifier for the live
	// reminder, empty when none is scheduled.
	NotificationID string `json:"notification_id,omitempty"`
}

// Subtask is a checklist entry owned by a single task.
type Subtask struct {
	SubtaskID string    `json:"subtask_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only note on a task.
type Comment struct {
	CommentID string    `json:"comment_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Touch refreshes UpdatedAt. UpdatedAt never moves backwards and never
// precedes CreatedAt, even if the clock does.
func (t *Task) Touch(now time.Time) {
	if now.Before(t.UpdatedAt) {
		return
	}
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// HasRecurrence reports whether completing the task should advance its due
// date instead of closing it.
func (t *Task) HasRecurrence() bool {
	return t.Recurrence != nil && t.Recurrence.Kind != RecurrenceNone
}

// WantsReminder reports whether the task, in its current state, should hold a
// scheduled reminder.
func (t *Task) WantsReminder() bool {
	return t.ReminderEnabled && t.ReminderDate != nil && !t.Completed
}

// AppendSubtask adds a subtask to the end of the list.
func (t *Task) AppendSubtask(st Subtask, now time.Time) {
	t.Subtasks = append(t.Subtasks, st)
	t.Touch(now)
}

// ToggleSubtask flips the completion flag of the subtask with the given ID.
// Returns false if the task has no such subtask.
func (t *Task) ToggleSubtask(subtaskID string, now time.Time) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].SubtaskID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			t.Touch(now)
			return true
		}
	}
	return false
}

// RemoveSubtask deletes the subtask with the given ID.
// Returns false if the task has no such subtask.
func (t *Task) RemoveSubtask(subtaskID string, now time.Time) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].SubtaskID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			t.Touch(now)
			return true
		}
	}
	return false
}

// AppendComment adds a comment to the end of the list.
func (t *Task) AppendComment(c Comment, now time.Time) {
	t.Comments = append(t.Comments, c)
	t.Touch(now)
}

// HasLabel reports whether any of the given label IDs is attached to the task.
func (t *Task) HasLabel(labelIDs ...string) bool {
	for _, l := range t.Labels {
		for _, id := range labelIDs {
			if l.LabelID == id {
				return true
			}
		}
	}
	return false
}

// RemoveLabel drops the label with the given ID from the task's label list.
// Returns false if the label was not attached.
func (t *Task) RemoveLabel(labelID string, now time.Time) bool {
	kept := t.Labels[:0]
	removed := false
	for _, l := range t.Labels {
		if l.LabelID == labelID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	t.Labels = kept
	if removed {
		t.Touch(now)
	}
	return removed
}

// UnassignPriority clears the priority if it matches priorityID.
// Returns false if the task held a different priority or none.
func (t *Task) UnassignPriority(priorityID string, now time.Time) bool {
	if t.Priority == nil || t.Priority.PriorityID != priorityID {
		return false
	}
	t.Priority = nil
	t.Touch(now)
	return true
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (t Task) Clone() Task {
	c := t
	if t.Priority != nil {
		p := *t.Priority
		c.Priority = &p
	}
	c.DueDate = cloneTime(t.DueDate)
	c.ReminderDate = cloneTime(t.ReminderDate)
	if t.Recurrence != nil {
		r := t.Recurrence.Clone()
		c.Recurrence = &r
	}
	c.Labels = append([]Label{}, t.Labels...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	c.Comments = append([]Comment{}, t.Comments...)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
