package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize taskpad configuration and storage",
		Long: "Create the configuration directory with a default config.yaml, then open\n" +
			"the storage backend once so the data directory and built-in priorities exist.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	// A --data-dir given at init time is recorded in the new config.yaml.
	dataDir := ""
	if flags.dataDir != "" {
		if dataDir, err = paths.ResolveDataDir(flags.dataDir, ""); err != nil {
			return sysError(fmt.Errorf("resolve data dir: %w", err))
		}
	}
	written, err := writeConfigIfMissing(paths.ConfigFile(configDir), dataDir)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "taskpad initialized successfully")
		if written {
			fmt.Fprintln(out, "  config: ", paths.ConfigFile(configDir), "(created)")
		} else {
			fmt.Fprintln(out, "  config: ", paths.ConfigFile(configDir))
		}
		fmt.Fprintln(out, "  backend:", a.cfg.Backend)
		fmt.Fprintln(out, "  data:   ", a.cfg.DataDir)
		return nil
	})
}
