package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

const (
	shortIDLen   = 8
	displayTime  = "2006-01-02 15:04"
	checkDone    = "[x]"
	checkPending = "[ ]"
)

var (
	dimStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Strikethrough(true).Faint(true)
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// colorize renders text in the given hex color. Invalid colors render plain.
func colorize(color, text string) string {
	if color == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.Local).Format(displayTime)
}

func checkbox(done bool) string {
	if done {
		return checkDone
	}
	return checkPending
}

func recurrenceText(r *types.Recurrence) string {
	if r == nil || r.Kind == types.RecurrenceNone {
		return ""
	}
	text := string(r.Kind)
	if r.Interval > 1 {
		text = fmt.Sprintf("every %d %s", r.Interval, r.Kind)
	}
	if r.EndDate != nil {
		text += " until " + formatDate(r.EndDate)
	}
	return text
}

// taskLine renders one task as a single listing row.
func taskLine(t types.Task) string {
	title := titleStyle.Render(t.Title)
	if t.Completed {
		title = doneStyle.Render(t.Title)
	}
	parts := []string{checkbox(t.Completed), dimStyle.Render(shortID(t.TaskID)), title}
	if t.Priority != nil {
		parts = append(parts, colorize(t.Priority.Color, "("+t.Priority.Name+")"))
	}
	for _, l := range t.Labels {
		parts = append(parts, colorize(l.Color, "#"+l.Name))
	}
	if t.DueDate != nil {
		parts = append(parts, "due "+formatDate(t.DueDate))
	}
	if r := recurrenceText(t.Recurrence); r != "" {
		parts = append(parts, "repeats "+r)
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Completed {
				done++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d", done, n))
	}
	return strings.Join(parts, " ")
}

func renderTaskList(w io.Writer, tasks []types.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no tasks"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, taskLine(t))
	}
}

// renderTask prints the full detail view of a task.
func renderTask(w io.Writer, t types.Task) {
	fmt.Fprintln(w, taskLine(t))
	fmt.Fprintf(w, "  id:       %s\n", t.TaskID)
	if t.Description != "" {
		fmt.Fprintf(w, "  notes:    %s\n", t.Description)
	}
	if t.ReminderEnabled && t.ReminderDate != nil {
		fmt.Fprintf(w, "  reminder: %s\n", formatDate(t.ReminderDate))
	}
	fmt.Fprintf(w, "  created:  %s\n", formatDate(&t.CreatedAt))
	fmt.Fprintf(w, "  updated:  %s\n", formatDate(&t.UpdatedAt))
	if len(t.Subtasks) > 0 {
		fmt.Fprintln(w, "  subtasks:")
		for _, st := range t.Subtasks {
			fmt.Fprintf(w, "    %s %s %s\n", checkbox(st.Completed), dimStyle.Render(shortID(st.SubtaskID)), st.Text)
		}
	}
	if len(t.Comments) > 0 {
		fmt.Fprintln(w, "  comments:")
		for _, c := range t.Comments {
			fmt.Fprintf(w, "    %s %s\n", dimStyle.Render(formatDate(&c.CreatedAt)), c.Text)
		}
	}
}

func renderLabels(w io.Writer, labels []types.Label) {
	for _, l := range labels {
		fmt.Fprintf(w, "%s %s %s\n", dimStyle.Render(shortID(l.LabelID)), colorize(l.Color, l.Name), dimStyle.Render(l.Color))
	}
}

func renderPriorities(w io.Writer, priorities []types.Priority) {
	for _, p := range priorities {
		fmt.Fprintf(w, "%s %s %s\n", dimStyle.Render(shortID(p.PriorityID)), colorize(p.Color, p.Name), dimStyle.Render(p.Color))
	}
}
