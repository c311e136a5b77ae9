package types

import "time"

// Reminder is a notification waiting to fire. ReminderID is the opaque handle
// handed back to the task store.
type Reminder struct {
	ReminderID string    `json:"reminder_id"`
	OwnerKey   string    `json:"owner_key"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	TriggerAt  time.Time `json:"trigger_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Due reports whether the reminder should fire at now.
func (r Reminder) Due(now time.Time) bool {
	return !r.TriggerAt.After(now)
}
