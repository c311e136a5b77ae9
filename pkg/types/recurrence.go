package types

import "time"

// RecurrenceKind selects the period a recurring task advances by.
type RecurrenceKind string

// Recurrence kinds.
const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
	RecurrenceYearly  RecurrenceKind = "yearly"
)

// validRecurrenceKinds is the set of recognized recurrence kinds.
var validRecurrenceKinds = map[RecurrenceKind]bool{
	RecurrenceNone:    true,
	RecurrenceDaily:   true,
	RecurrenceWeekly:  true,
	RecurrenceMonthly: true,
	RecurrenceYearly:  true,
}

// Recurrence governs automatic due-date advancement on completion.
// It is owned by its task and replaced wholesale, never edited in place.
type Recurrence struct {
	Kind     RecurrenceKind `json:"kind"`
	Interval int            `json:"interval"`
	EndDate  *time.Time     `json:"end_date,omitempty"`
}

// ParseRecurrenceKind converts a user-supplied string into a RecurrenceKind.
// Returns ErrInvalidRecurrence if the kind is not recognized.
func ParseRecurrenceKind(s string) (RecurrenceKind, error) {
	k := RecurrenceKind(s)
	if !validRecurrenceKinds[k] {
		return "", ErrInvalidRecurrence
	}
	return k, nil
}

// Validate checks the kind and that the interval is a positive integer.
func (r Recurrence) Validate() error {
	if !validRecurrenceKinds[r.Kind] {
		return ErrInvalidRecurrence
	}
	if r.Interval < 1 {
		return ErrInvalidRecurrence
	}
	return nil
}

// Ended reports whether next falls after the rule's end date.
// A rule without an end date never ends.
func (r Recurrence) Ended(next time.Time) bool {
	return r.EndDate != nil && next.After(*r.EndDate)
}

// Clone returns a copy that shares no pointers with r.
func (r Recurrence) Clone() Recurrence {
	c := r
	c.EndDate = cloneTime(r.EndDate)
	return c
}
