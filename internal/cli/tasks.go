package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// scheduleFlags are the date, recurrence and reminder flags shared by add and
// update.
type scheduleFlags struct {
	description string
	priority    string
	labels      []string
	due         string
	repeat      string
	every       int
	until       string
	remind      string
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "task description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "priority name or ID")
	cmd.Flags().StringSliceVarP(&f.labels, "label", "l", nil, "label name or ID (repeatable)")
	cmd.Flags().StringVar(&f.due, "due", "", "due date (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", today, tomorrow)")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "recurrence: daily, weekly, monthly, yearly or none")
	cmd.Flags().IntVar(&f.every, "every", 1, "recurrence interval")
	cmd.Flags().StringVar(&f.until, "until", "", "last date the recurrence may fall on")
	cmd.Flags().StringVar(&f.remind, "remind", "", "reminder date and time")
}

func newAddCmd() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add creates a task. Without --priority the task gets the Medium priority.

Example:
  taskpad add "Water plants" --due tomorrow --repeat weekly
  taskpad add "Pay rent" --due 2024-02-01 --repeat monthly --remind "2024-02-01 08:00"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runAdd(ctx, cmd, a, strings.Join(args, " "), &f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, a *app, title string, f *scheduleFlags) error {
	now := time.Now()
	in := types.TaskInput{Title: title, Description: f.description}

	var err error
	if f.priority != "" {
		if in.PriorityID, err = resolvePriorityID(a.store, f.priority); err != nil {
			return err
		}
	}
	if in.LabelIDs, err = resolveLabelIDs(a.store, f.labels); err != nil {
		return err
	}
	if f.due != "" {
		if in.DueDate, err = parseDate(f.due, now); err != nil {
			return err
		}
	}
	if f.repeat != "" {
		if in.Recurrence, err = parseRecurrence(f.repeat, f.every, f.until, now); err != nil {
			return err
		}
	}
	if f.remind != "" {
		if in.ReminderDate, err = parseDate(f.remind, now); err != nil {
			return err
		}
		in.ReminderEnabled = true
	}

	task, err := a.store.AddTask(ctx, in)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), task)
	}
	fmt.Fprintln(cmd.OutOrStdout(), task.TaskID)
	return nil
}

func newListCmd() *cobra.Command {
	var (
		priority      string
		labels        []string
		search        string
		hideCompleted bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Long: `List prints tasks in creation order. Filters combine with AND; several
--label values match tasks carrying any of them.

Example:
  taskpad list --label work --hide-completed
  taskpad list --search milk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var patch types.FilterPatch
				if priority != "" {
					id, err := resolvePriorityID(a.store, priority)
					if err != nil {
						return err
					}
					patch.PriorityID = &id
				}
				if len(labels) > 0 {
					ids, err := resolveLabelIDs(a.store, labels)
					if err != nil {
						return err
					}
					patch.LabelIDs = &ids
				}
				if search != "" {
					patch.Search = &search
				}
				if hideCompleted {
					show := false
					patch.ShowCompleted = &show
				}
				a.store.SetFilterOptions(patch)

				tasks := a.store.FilteredTasks()
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), tasks)
				}
				renderTaskList(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only tasks with this priority")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "only tasks carrying any of these labels")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive title substring")
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "omit completed tasks")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task with its subtasks and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), task)
				}
				renderTask(cmd.OutOrStdout(), task)
				return nil
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var (
		f          scheduleFlags
		title      string
		noPriority bool
		noDue      bool
		noRepeat   bool
		noRemind   bool
	)
	cmd := &cobra.Command{
		Use:   "update <task>",
		Short: "Change fields of a task",
		Long: `Update changes only the fields whose flags are given. --label replaces the
whole label set. The --no-* flags clear a field.

Example:
  taskpad update 0190ab --title "Water all plants" --label home
  taskpad update 0190ab --no-due --no-repeat`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}

				now := time.Now()
				changed := cmd.Flags().Changed
				patch := types.TaskPatch{
					ClearPriority:   noPriority,
					ClearDueDate:    noDue,
					ClearRecurrence: noRepeat,
					ClearReminder:   noRemind,
				}
				if changed("title") {
					patch.Title = &title
				}
				if changed("desc") {
					patch.Description = &f.description
				}
				if changed("priority") {
					id, err := resolvePriorityID(a.store, f.priority)
					if err != nil {
						return err
					}
					patch.PriorityID = &id
				}
				if changed("label") {
					ids, err := resolveLabelIDs(a.store, f.labels)
					if err != nil {
						return err
					}
					patch.LabelIDs = &ids
				}
				if changed("due") {
					if patch.DueDate, err = parseDate(f.due, now); err != nil {
						return err
					}
				}
				if changed("repeat") {
					if patch.Recurrence, err = parseRecurrence(f.repeat, f.every, f.until, now); err != nil {
						return err
					}
				}
				if changed("remind") {
					if patch.ReminderDate, err = parseDate(f.remind, now); err != nil {
						return err
					}
					enabled := true
					patch.ReminderEnabled = &enabled
				}
				if patch.IsEmpty() {
					return userErrorf("nothing to update")
				}

				if err := a.store.UpdateTask(ctx, task.TaskID, patch); err != nil {
					return fmt.Errorf("update task: %w", err)
				}
				return printTask(cmd, a, task.TaskID)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().BoolVar(&noPriority, "no-priority", false, "remove the priority")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "remove the due date")
	cmd.Flags().BoolVar(&noRepeat, "no-repeat", false, "remove the recurrence")
	cmd.Flags().BoolVar(&noRemind, "no-remind", false, "turn off the reminder")
	return cmd
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task>",
		Short: "Toggle a task's completion",
		Long: `Done marks an open task complete, or reopens a completed one. Completing a
recurring task moves its due date (and reminder) to the next occurrence instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				if err := a.store.ToggleTaskComplete(ctx, task.TaskID); err != nil {
					return fmt.Errorf("toggle task: %w", err)
				}
				return printTask(cmd, a, task.TaskID)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task>",
		Aliases: []string{"rm"},
		Short:   "Delete a task and cancel its reminder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeleteTask(ctx, task.TaskID); err != nil {
					return fmt.Errorf("delete task: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": task.TaskID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", task.TaskID)
				return nil
			})
		},
	}
}

// printTask re-reads the task and prints its listing row, or the full task
// in JSON mode.
func printTask(cmd *cobra.Command, a *app, id string) error {
	task, ok := a.store.Task(id)
	if !ok {
		return userError(fmt.Errorf("task %q: %w", id, types.ErrNotFound))
	}
	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), task)
	}
	fmt.Fprintln(cmd.OutOrStdout(), taskLine(task))
	return nil
}
