package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage a task's comments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <task> <text>",
		Short: "Append a comment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				task, err := resolveTask(a.store, args[0])
				if err != nil {
					return err
				}
				c, err := a.store.AddComment(ctx, task.TaskID, strings.Join(args[1:], " "))
				if err != nil {
					return fmt.Errorf("add comment: %w", err)
				}
				if c == nil {
					return userError(fmt.Errorf("task %q: %w", args[0], types.ErrNotFound))
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), c)
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.CommentID)
				return nil
			})
		},
	})
	return cmd
}
