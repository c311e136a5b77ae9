// Package types defines the taskpad entities (tasks, labels, priorities,
// subtasks, comments, recurrence rules, reminders), the gateway interfaces the
// task store talks to, configuration, and the standard error values.
package types
