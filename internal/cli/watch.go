package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/internal/notify"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

func newWatchCmd() *cobra.Command {
	var (
		once     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Deliver reminders as they come due",
		Long: `Watch prints every pending reminder whose time has passed, then keeps
checking on the notifications.sweep_interval schedule until interrupted.
With --once it delivers what is due and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				d := printDeliverer(cmd.OutOrStdout())

				delivered, err := a.reminders.Sweep(ctx, d)
				if err != nil {
					return sysError(fmt.Errorf("sweep reminders: %w", err))
				}
				if once {
					if !flags.jsonMode {
						fmt.Fprintf(cmd.ErrOrStderr(), "delivered %d reminders\n", delivered)
					}
					return nil
				}

				every := a.cfg.Notifications.SweepInterval
				if cmd.Flags().Changed("interval") {
					every = interval
				}
				if err := a.reminders.Start(every, d); err != nil {
					return userError(err)
				}
				defer a.reminders.Stop()

				a.log.WithField("interval", every.String()).Info("cli.watch.started")
				sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				<-sigCtx.Done()
				a.log.Info("cli.watch.stopped")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "deliver due reminders once and exit")
	cmd.Flags().DurationVar(&interval, "interval", 0, "override notifications.sweep_interval")
	return cmd
}

// printDeliverer writes each reminder to w, as a JSON object in --json mode.
func printDeliverer(w io.Writer) notify.Deliverer {
	return notify.DelivererFunc(func(ctx context.Context, r types.Reminder) error {
		if flags.jsonMode {
			return writeJSON(w, r)
		}
		_, err := fmt.Fprintf(w, "%s %s: %s\n", dimStyle.Render(formatDate(&r.TriggerAt)), titleStyle.Render(r.Title), r.Body)
		return err
	})
}
