package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/taskpad/internal/store"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Accepted date layouts, tried in order. Layouts without a zone are read in
// the local zone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate reads a user-supplied date. It accepts the layouts above plus
// "today" and "tomorrow", which resolve to 09:00 local time.
func parseDate(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "today", "tomorrow":
		day := now.In(time.Local)
		if strings.EqualFold(s, "tomorrow") {
			day = day.AddDate(0, 0, 1)
		}
		t := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
		return &t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, userErrorf("invalid date %q (use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", RFC3339, today or tomorrow)", s)
}

// parseRecurrence builds a rule from the --repeat, --every and --until flags.
func parseRecurrence(kind string, interval int, until string, now time.Time) (*types.Recurrence, error) {
	k, err := types.ParseRecurrenceKind(strings.ToLower(strings.TrimSpace(kind)))
	if err != nil {
		return nil, userErrorf("--repeat %q: %w", kind, err)
	}
	r := &types.Recurrence{Kind: k, Interval: interval}
	if until != "" {
		end, err := parseDate(until, now)
		if err != nil {
			return nil, err
		}
		r.EndDate = end
	}
	if err := r.Validate(); err != nil {
		return nil, userErrorf("--every %d: %w", interval, err)
	}
	return r, nil
}

// matchRef resolves ref against ids: an exact match wins, otherwise a unique
// prefix. names, when non-nil, are matched case-insensitively after IDs.
func matchRef(kind, ref string, ids, names []string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", userErrorf("%s reference must not be empty", kind)
	}
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}
	for i, name := range names {
		if strings.EqualFold(name, ref) {
			return ids[i], nil
		}
	}

	var found []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", userError(fmt.Errorf("%s %q: %w", kind, ref, types.ErrNotFound))
	case 1:
		return found[0], nil
	default:
		return "", userErrorf("%s %q is ambiguous (%d matches)", kind, ref, len(found))
	}
}

func resolveTask(st *store.Store, ref string) (types.Task, error) {
	tasks := st.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.TaskID
	}
	id, err := matchRef("task", ref, ids, nil)
	if err != nil {
		return types.Task{}, err
	}
	t, ok := st.Task(id)
	if !ok {
		return types.Task{}, userError(fmt.Errorf("task %q: %w", ref, types.ErrNotFound))
	}
	return t, nil
}

func resolveSubtaskID(t types.Task, ref string) (string, error) {
	ids := make([]string, len(t.Subtasks))
	for i, st := range t.Subtasks {
		ids[i] = st.SubtaskID
	}
	return matchRef("subtask", ref, ids, nil)
}

func resolveLabelID(st *store.Store, ref string) (string, error) {
	labels := st.Labels()
	ids := make([]string, len(labels))
	names := make([]string, len(labels))
	for i, l := range labels {
		ids[i], names[i] = l.LabelID, l.Name
	}
	return matchRef("label", ref, ids, names)
}

func resolveLabelIDs(st *store.Store, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveLabelID(st, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func resolvePriorityID(st *store.Store, ref string) (string, error) {
	priorities := st.Priorities()
	ids := make([]string, len(priorities))
	names := make([]string, len(priorities))
	for i, p := range priorities {
		ids[i], names[i] = p.PriorityID, p.Name
	}
	return matchRef("priority", ref, ids, names)
}
