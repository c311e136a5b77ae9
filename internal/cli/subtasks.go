package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/internal/generate"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

func newSubtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's subtasks",
	}
	cmd.AddCommand(newSubtaskAddCmd())
	cmd.AddCommand(newSubtaskDoneCmd())
	cmd.AddCommand(newSubtaskDeleteCmd())
	cmd.AddCommand(newSubtaskGenerateCmd())
	return cmd
}

func newSubtaskAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task> <text>",
		Short: "Append a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				st, err := a.store.AddSubtask(ctx, task.TaskID, strings.Join(args[1:], " "))
				if err != nil {
					return fmt.Errorf("add subtask: %w", err)
				}
				if st == nil {
					return userError(fmt.Errorf("task %q: %w", args[0], types.ErrNotFound))
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), st)
				}
				fmt.Fprintln(cmd.OutOrStdout(), st.SubtaskID)
				return nil
			})
		},
	}
}

func newSubtaskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task> <subtask>",
		Short: "Toggle a subtask's completion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				subID, err := resolveSubtaskID(task, args[1])
				if err != nil {
					return err
				}
				if err := a.store.ToggleSubtaskComplete(ctx, task.TaskID, subID); err != nil {
					return fmt.Errorf("toggle subtask: %w", err)
				}
				return printTask(cmd, a, task.TaskID)
			})
		},
	}
}

func newSubtaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task> <subtask>",
		Aliases: []string{"rm"},
		Short:   "Remove a subtask",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				subID, err := resolveSubtaskID(task, args[1])
				if err != nil {
					return err
				}
				if err := a.store.DeleteSubtask(ctx, task.TaskID, subID); err != nil {
					return fmt.Errorf("delete subtask: %w", err)
				}
				return printTask(cmd, a, task.TaskID)
			})
		},
	}
}

func newSubtaskGenerateCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate <task>",
		Short: "Break a task into subtasks with Gemini",
		Long: `Generate asks the Gemini API to split the task's title into steps and adds
each step as a subtask. The API key comes from gemini.api_key in config.yaml
or the GEMINI_API_KEY environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				added, err := a.store.GenerateSubtasks(ctx, task.TaskID, a.generator(), generate.ClampCount(count))
				switch {
				case errors.Is(err, types.ErrGeneratorNotConfigured):
					return userErrorf("set gemini.api_key or GEMINI_API_KEY: %w", err)
				case err != nil:
					return sysError(err)
				}
				if flags.jsonMode {
					updated, _ := a.store.Task(task.TaskID)
					return writeJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d subtasks\n", added)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of subtasks to request (1-10)")
	return cmd
}
