// Package cli implements the taskpad command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

var flags rootFlags

// NewRootCmd creates the top-level "taskpad" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:   "taskpad",
		Short: "A personal task manager with recurring tasks and reminders",
		Long: "taskpad keeps tasks with due dates, priorities, labels, subtasks and comments.\n" +
			"Completing a recurring task moves it to its next due date, and reminders\n" +
			"follow the task through every edit.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newDoneCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newSubtaskCmd())
	root.AddCommand(newCommentCmd())
	root.AddCommand(newLabelCmd())
	root.AddCommand(newPriorityCmd())
	root.AddCommand(newWatchCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, "taskpad:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// cliError attaches a process exit code to an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error {
	return &cliError{code: exitUserError, err: err}
}

func userErrorf(format string, args ...any) error {
	return userError(fmt.Errorf(format, args...))
}

func sysError(err error) error {
	return &cliError{code: exitSysError, err: err}
}

// exitCode maps err to a process exit code. Errors not explicitly marked
// (bad flags, unknown commands, validation) are user errors.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if errors.Is(err, types.ErrGeneratorFailed) || errors.Is(err, types.ErrStoreClosed) {
		return exitSysError
	}
	return exitUserError
}
