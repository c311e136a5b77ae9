package types

import "time"

// TaskInput carries the caller-supplied fields for a new task. PriorityID and
// LabelIDs are resolved against the store's collections; unknown IDs are
// dropped.
type TaskInput struct {
	Title           string
	Description     string
	Completed       bool
	PriorityID      string
	DueDate         *time.Time
	Recurrence      *Recurrence
	LabelIDs        []string
	ReminderEnabled bool
	ReminderDate    *time.Time
}

// TaskPatch is a partial update. A nil field leaves the attribute alone; the
// Clear flags reset optional attributes to absent and win over a value set in
// the same patch. An unknown PriorityID leaves the priority unchanged.
type TaskPatch struct {
	Title           *string
	Description     *string
	Completed       *bool
	PriorityID      *string
	ClearPriority   bool
	DueDate         *time.Time
	ClearDueDate    bool
	Recurrence      *Recurrence
	ClearRecurrence bool
	LabelIDs        *[]string
	ReminderEnabled *bool
	ReminderDate    *time.Time
	ClearReminder   bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

// FilterOptions is the session-scoped view filter. Zero values mean "no
// filter" except ShowCompleted, which defaults to true via DefaultFilterOptions.
type FilterOptions struct {
	PriorityID    string   `json:"priority_id,omitempty"`
	LabelIDs      []string `json:"label_ids,omitempty"`
	ShowCompleted bool     `json:"show_completed"`
	Search        string   `json:"search,omitempty"`
}

// DefaultFilterOptions returns the filter state at the start of a session.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{ShowCompleted: true}
}

// FilterPatch shallow-merges into FilterOptions; nil fields are left alone.
type FilterPatch struct {
	PriorityID    *string
	LabelIDs      *[]string
	ShowCompleted *bool
	Search        *string
}

// Apply returns f with the supplied fields of p merged over it.
func (f FilterOptions) Apply(p FilterPatch) FilterOptions {
	if p.PriorityID != nil {
		f.PriorityID = *p.PriorityID
	}
	if p.LabelIDs != nil {
		f.LabelIDs = append([]string(nil), (*p.LabelIDs)...)
	}
	if p.ShowCompleted != nil {
		f.ShowCompleted = *p.ShowCompleted
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}
