// Package recurrence computes the next occurrence of a recurring task.
package recurrence

import (
	"time"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// NextDueDate advances current by the rule's interval. Daily and weekly rules
// add whole days. Monthly and yearly rules move by calendar months and clamp
// the day to the last day of the target month, so January 31 plus one month
// is the last day of February. Wall-clock time and location are kept.
// A rule of kind none, or one with a non-positive interval, returns current.
func NextDueDate(current time.Time, rule types.Recurrence) time.Time {
	n := rule.Interval
	if n < 1 {
		return current
	}
	switch rule.Kind {
	case types.RecurrenceDaily:
		return current.AddDate(0, 0, n)
	case types.RecurrenceWeekly:
		return current.AddDate(0, 0, 7*n)
	case types.RecurrenceMonthly:
		return addMonthsClamped(current, n)
	case types.RecurrenceYearly:
		return addMonthsClamped(current, 12*n)
	default:
		return current
	}
}

// addMonthsClamped adds months without letting the day overflow into the
// following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := daysInMonth(first.Month(), first.Year()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
