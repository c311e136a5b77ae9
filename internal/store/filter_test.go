package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

func titles(tasks []types.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestFilteredTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	work, err := env.store.AddLabel(ctx, "work", "#111111")
	require.NoError(t, err)
	home, err := env.store.AddLabel(ctx, "home", "#222222")
	require.NoError(t, err)
	high := env.priorityNamed(t, types.PriorityHigh)

	env.mustAdd(t, types.TaskInput{Title: "Buy Milk", LabelIDs: []string{home.LabelID}})
	env.mustAdd(t, types.TaskInput{Title: "Quarterly report", Description: "include MILKSHAKE sales", PriorityID: high.PriorityID, LabelIDs: []string{work.LabelID}})
	env.mustAdd(t, types.TaskInput{Title: "Fix bike", Completed: true, LabelIDs: []string{home.LabelID, work.LabelID}})
	env.mustAdd(t, types.TaskInput{Title: "Call plumber", PriorityID: high.PriorityID, Completed: true})

	tests := []struct {
		name  string
		patch types.FilterPatch
		want  []string
	}{
		{
			name: "default shows everything",
			want: []string{"Buy Milk", "Quarterly report", "Fix bike", "Call plumber"},
		},
		{
			name:  "hide completed",
			patch: types.FilterPatch{ShowCompleted: ptr(false)},
			want:  []string{"Buy Milk", "Quarterly report"},
		},
		{
			name:  "search is case-insensitive over title and description",
			patch: types.FilterPatch{Search: ptr("milk")},
			want:  []string{"Buy Milk", "Quarterly report"},
		},
		{
			name:  "priority by id",
			patch: types.FilterPatch{PriorityID: ptr(high.PriorityID)},
			want:  []string{"Quarterly report", "Call plumber"},
		},
		{
			name:  "labels match any",
			patch: types.FilterPatch{LabelIDs: &[]string{work.LabelID, "unknown"}},
			want:  []string{"Quarterly report", "Fix bike"},
		},
		{
			name: "criteria combine",
			patch: types.FilterPatch{
				LabelIDs:      &[]string{home.LabelID},
				ShowCompleted: ptr(false),
			},
			want: []string{"Buy Milk"},
		},
		{
			name:  "no match",
			patch: types.FilterPatch{Search: ptr("zebra")},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.store.SetFilterOptions(types.FilterPatch{
				PriorityID:    ptr(""),
				LabelIDs:      &[]string{},
				ShowCompleted: ptr(true),
				Search:        ptr(""),
			})
			env.store.SetFilterOptions(tt.patch)
			assert.Equal(t, tt.want, titles(env.store.FilteredTasks()))
		})
	}
}

func TestFilterTracksLatestState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustAdd(t, types.TaskInput{Title: "Walk dog"})

	env.store.SetFilterOptions(types.FilterPatch{ShowCompleted: ptr(false)})
	assert.Len(t, env.store.FilteredTasks(), 1)

	require.NoError(t, env.store.ToggleTaskComplete(ctx, task.TaskID))
	assert.Empty(t, env.store.FilteredTasks())

	env.store.SetFilterOptions(types.FilterPatch{ShowCompleted: ptr(true)})
	assert.Len(t, env.store.FilteredTasks(), 1)
}

func TestSetFilterOptionsMerges(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, types.DefaultFilterOptions(), env.store.FilterOptions())

	env.store.SetFilterOptions(types.FilterPatch{Search: ptr("milk")})
	got := env.store.SetFilterOptions(types.FilterPatch{ShowCompleted: ptr(false)})
	assert.Equal(t, "milk", got.Search)
	assert.False(t, got.ShowCompleted)

	labels := []string{"a"}
	env.store.SetFilterOptions(types.FilterPatch{LabelIDs: &labels})
	opts := env.store.FilterOptions()
	opts.LabelIDs[0] = "mutated"
	assert.Equal(t, []string{"a"}, env.store.FilterOptions().LabelIDs)
}
