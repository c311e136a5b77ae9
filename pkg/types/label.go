package types

// Label is a named, colored tag. Tasks hold copies of labels taken when the
// label was assigned.
type Label struct {
	LabelID string `json:"label_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

// Priority is a named, colored severity level. A task holds at most one.
type Priority struct {
	PriorityID string `json:"priority_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
}

// Names of the priorities seeded on first run.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)
