package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	defaultLabelColor    = "#3b82f6"
	defaultPriorityColor = "#6b7280"
)

func newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage labels",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				l, err := a.store.AddLabel(ctx, args[0], color)
				if err != nil {
					return fmt.Errorf("add label: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), l)
				}
				fmt.Fprintln(cmd.OutOrStdout(), l.LabelID)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&color, "color", "c", defaultLabelColor, "display color")

	del := &cobra.Command{
		Use:     "delete <label>",
		Aliases: []string{"rm"},
		Short:   "Delete a label and remove it from every task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := resolveLabelID(a.store, args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeleteLabel(ctx, id); err != nil {
					return fmt.Errorf("delete label: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				labels := a.store.Labels()
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), labels)
				}
				renderLabels(cmd.OutOrStdout(), labels)
				return nil
			})
		},
	}

	cmd.AddCommand(add, del, list)
	return cmd
}

func newPriorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Manage priorities",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.store.AddPriority(ctx, args[0], color)
				if err != nil {
					return fmt.Errorf("add priority: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.PriorityID)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&color, "color", "c", defaultPriorityColor, "display color")

	del := &cobra.Command{
		Use:     "delete <priority>",
		Aliases: []string{"rm"},
		Short:   "Delete a priority; tasks holding it are left without one",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := resolvePriorityID(a.store, args[0])
				if err != nil {
					return err
				}
				if err := a.store.DeletePriority(ctx, id); err != nil {
					return fmt.Errorf("delete priority: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List priorities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				priorities := a.store.Priorities()
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), priorities)
				}
				renderPriorities(cmd.OutOrStdout(), priorities)
				return nil
			})
		},
	}

	cmd.AddCommand(add, del, list)
	return cmd
}
