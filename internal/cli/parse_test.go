package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-06-12", want: time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local)},
		{in: "2024-06-12 08:15", want: time.Date(2024, 6, 12, 8, 15, 0, 0, time.Local)},
		{in: "2024-06-12T08:15", want: time.Date(2024, 6, 12, 8, 15, 0, 0, time.Local)},
		{in: "2024-06-12T08:15:00Z", want: time.Date(2024, 6, 12, 8, 15, 0, 0, time.UTC)},
		{in: "today", want: time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)},
		{in: " Tomorrow ", want: time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in, now)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}

	_, err := parseDate("next week", now)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestParseRecurrence(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)

	r, err := parseRecurrence("Monthly", 3, "2024-12-31", now)
	require.NoError(t, err)
	assert.Equal(t, types.RecurrenceMonthly, r.Kind)
	assert.Equal(t, 3, r.Interval)
	require.NotNil(t, r.EndDate)
	assert.True(t, r.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)))

	_, err = parseRecurrence("hourly", 1, "", now)
	assert.ErrorIs(t, err, types.ErrInvalidRecurrence)
	_, err = parseRecurrence("daily", -1, "", now)
	assert.ErrorIs(t, err, types.ErrInvalidRecurrence)
}

func TestMatchRef(t *testing.T) {
	ids := []string{"0190aaaa-1", "0190aaab-2", "0190bbbb-3"}
	names := []string{"Work", "Home", "Errand"}

	tests := []struct {
		name    string
		ref     string
		names   []string
		want    string
		wantErr string
	}{
		{name: "exact id", ref: "0190bbbb-3", want: "0190bbbb-3"},
		{name: "unique prefix", ref: "0190b", want: "0190bbbb-3"},
		{name: "ambiguous prefix", ref: "0190aaa", wantErr: "ambiguous"},
		{name: "no match", ref: "ffff", wantErr: "not found"},
		{name: "empty", ref: " ", wantErr: "must not be empty"},
		{name: "name match ignores case", ref: "home", names: names, want: "0190aaab-2"},
		{name: "names ignored when nil", ref: "home", wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchRef("label", tt.ref, ids, tt.names)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, exitUserError, exitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("add task: %w", types.ErrInvalidTitle), want: exitUserError},
		{name: "user error", err: userErrorf("bad flag"), want: exitUserError},
		{name: "system error", err: sysError(errors.New("disk full")), want: exitSysError},
		{name: "generator failed", err: fmt.Errorf("x: %w", types.ErrGeneratorFailed), want: exitSysError},
		{name: "store closed", err: types.ErrStoreClosed, want: exitSysError},
		{name: "unmarked", err: errors.New("unknown flag"), want: exitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
