package store

import (
	"strings"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// SetFilterOptions merges patch into the session filter and returns the
// result. The filter is never persisted.
func (s *Store) SetFilterOptions(patch types.FilterPatch) types.FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = s.filter.Apply(patch)
	return copyFilter(s.filter)
}

// FilterOptions returns the current session filter.
func (s *Store) FilterOptions() types.FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyFilter(s.filter)
}

// FilteredTasks returns copies of the tasks that pass the session filter, in
// collection order. It is recomputed on every call.
func (s *Store) FilteredTasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []types.Task{}
	for _, t := range s.tasks {
		if matchesFilter(t, s.filter) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// matchesFilter reports whether t passes every criterion set in f: completed
// tasks only when ShowCompleted, the priority by ID, any of the labels, and a
// case-insensitive substring of the title or description.
func matchesFilter(t *types.Task, f types.FilterOptions) bool {
	if t.Completed && !f.ShowCompleted {
		return false
	}
	if f.PriorityID != "" && (t.Priority == nil || t.Priority.PriorityID != f.PriorityID) {
		return false
	}
	if len(f.LabelIDs) > 0 && !t.HasLabel(f.LabelIDs...) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func copyFilter(f types.FilterOptions) types.FilterOptions {
	if f.LabelIDs != nil {
		f.LabelIDs = append([]string(nil), f.LabelIDs...)
	}
	return f
}
