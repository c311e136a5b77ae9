package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Record structures for the tasks collection. Every date is written as an
// RFC3339 string, or null when absent, and parsed back into time.Time on load.

// taskJSON is one record in the tasks collection.
type taskJSON struct {
	TaskID          string          `json:"task_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Completed       bool            `json:"completed"`
	Priority        *types.Priority `json:"priority"`
	DueDate         *string         `json:"due_date"`
	Recurrence      *recurrenceJSON `json:"recurrence"`
	Labels          []types.Label   `json:"labels"`
	Subtasks        []subtaskJSON   `json:"subtasks"`
	Comments        []commentJSON   `json:"comments"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	ReminderEnabled bool            `json:"reminder_enabled"`
	ReminderDate    *string         `json:"reminder_date"`
	NotificationID  string          `json:"notification_id,omitempty"`
}

type recurrenceJSON struct {
	Kind     string  `json:"kind"`
	Interval int     `json:"interval"`
	EndDate  *string `json:"end_date"`
}

type subtaskJSON struct {
	SubtaskID string `json:"subtask_id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

type commentJSON struct {
	CommentID string `json:"comment_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// errMissingID is returned when a record carries no identifier.
var errMissingID = errors.New("record has no id")

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeTask(t *types.Task) (json.RawMessage, error) {
	rec := taskJSON{
		TaskID:          t.TaskID,
		Title:           t.Title,
		Description:     t.Description,
		Completed:       t.Completed,
		Priority:        t.Priority,
		DueDate:         formatTimePtr(t.DueDate),
		Labels:          t.Labels,
		Subtasks:        make([]subtaskJSON, 0, len(t.Subtasks)),
		Comments:        make([]commentJSON, 0, len(t.Comments)),
		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
		ReminderEnabled: t.ReminderEnabled,
		ReminderDate:    formatTimePtr(t.ReminderDate),
		NotificationID:  t.NotificationID,
	}
	if rec.Labels == nil {
		rec.Labels = []types.Label{}
	}
	if t.Recurrence != nil {
		rec.Recurrence = &recurrenceJSON{
			Kind:     string(t.Recurrence.Kind),
			Interval: t.Recurrence.Interval,
			EndDate:  formatTimePtr(t.Recurrence.EndDate),
		}
	}
	for _, st := range t.Subtasks {
		rec.Subtasks = append(rec.Subtasks, subtaskJSON{
			SubtaskID: st.SubtaskID,
			Text:      st.Text,
			Completed: st.Completed,
			CreatedAt: formatTime(st.CreatedAt),
		})
	}
	for _, c := range t.Comments {
		rec.Comments = append(rec.Comments, commentJSON{
			CommentID: c.CommentID,
			Text:      c.Text,
			CreatedAt: formatTime(c.CreatedAt),
		})
	}
	return json.Marshal(rec)
}

func decodeTask(raw json.RawMessage) (*types.Task, error) {
	var rec taskJSON
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.TaskID == "" {
		return nil, errMissingID
	}

	t := &types.Task{
		TaskID:          rec.TaskID,
		Title:           rec.Title,
		Description:     rec.Description,
		Completed:       rec.Completed,
		Priority:        rec.Priority,
		Labels:          rec.Labels,
		Subtasks:        make([]types.Subtask, 0, len(rec.Subtasks)),
		Comments:        make([]types.Comment, 0, len(rec.Comments)),
		ReminderEnabled: rec.ReminderEnabled,
		NotificationID:  rec.NotificationID,
	}
	if t.Labels == nil {
		t.Labels = []types.Label{}
	}

	var err error
	if t.CreatedAt, err = parseTime(rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	if t.DueDate, err = parseTimePtr(rec.DueDate); err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	if t.ReminderDate, err = parseTimePtr(rec.ReminderDate); err != nil {
		return nil, fmt.Errorf("reminder_date: %w", err)
	}
	if rec.Recurrence != nil {
		end, err := parseTimePtr(rec.Recurrence.EndDate)
		if err != nil {
			return nil, fmt.Errorf("recurrence end_date: %w", err)
		}
		t.Recurrence = &types.Recurrence{
			Kind:     types.RecurrenceKind(rec.Recurrence.Kind),
			Interval: rec.Recurrence.Interval,
			EndDate:  end,
		}
	}

	for _, st := range rec.Subtasks {
		created, err := parseTime(st.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("subtask %s created_at: %w", st.SubtaskID, err)
		}
		t.Subtasks = append(t.Subtasks, types.Subtask{
			SubtaskID: st.SubtaskID,
			Text:      st.Text,
			Completed: st.Completed,
			CreatedAt: created,
		})
	}
	for _, c := range rec.Comments {
		created, err := parseTime(c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("comment %s created_at: %w", c.CommentID, err)
		}
		t.Comments = append(t.Comments, types.Comment{
			CommentID: c.CommentID,
			Text:      c.Text,
			CreatedAt: created,
		})
	}
	return t, nil
}

func encodeLabel(l types.Label) (json.RawMessage, error) {
	return json.Marshal(l)
}

func decodeLabel(raw json.RawMessage) (types.Label, error) {
	var l types.Label
	if err := json.Unmarshal(raw, &l); err != nil {
		return types.Label{}, err
	}
	if l.LabelID == "" {
		return types.Label{}, errMissingID
	}
	return l, nil
}

func encodePriority(p types.Priority) (json.RawMessage, error) {
	return json.Marshal(p)
}

func decodePriority(raw json.RawMessage) (types.Priority, error) {
	var p types.Priority
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Priority{}, err
	}
	if p.PriorityID == "" {
		return types.Priority{}, errMissingID
	}
	return p, nil
}

// localize moves every date of t into loc so calendar arithmetic follows the
// user's wall clock rather than the UTC encoding.
func localize(t *types.Task, loc *time.Location) {
	t.CreatedAt = t.CreatedAt.In(loc)
	t.UpdatedAt = t.UpdatedAt.In(loc)
	t.DueDate = inLocation(t.DueDate, loc)
	t.ReminderDate = inLocation(t.ReminderDate, loc)
	if t.Recurrence != nil {
		t.Recurrence.EndDate = inLocation(t.Recurrence.EndDate, loc)
	}
	for i := range t.Subtasks {
		t.Subtasks[i].CreatedAt = t.Subtasks[i].CreatedAt.In(loc)
	}
	for i := range t.Comments {
		t.Comments[i].CreatedAt = t.Comments[i].CreatedAt.In(loc)
	}
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}
