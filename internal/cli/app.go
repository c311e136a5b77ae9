package cli

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskpad/internal/generate"
	"github.com/mesh-intelligence/taskpad/internal/notify"
	"github.com/mesh-intelligence/taskpad/internal/paths"
	"github.com/mesh-intelligence/taskpad/internal/storage"
	"github.com/mesh-intelligence/taskpad/internal/store"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// app bundles the components a command works with.
type app struct {
	configDir string
	cfg       types.Config
	log       *log.Logger
	backend   storage.Backend
	reminders *notify.Scheduler
	store     *store.Store
}

// openApp loads configuration, opens the storage backend, and opens a store
// on top of it. The caller must call close.
func openApp(cmd *cobra.Command) (*app, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, sysError(err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), v.GetString(cfgKeyLogLevel))
	if err != nil {
		return nil, userError(err)
	}
	cfg, err := buildConfig(v)
	if err != nil {
		return nil, userError(err)
	}

	backend, err := storage.Open(cfg)
	if err != nil {
		return nil, sysError(fmt.Errorf("open %s backend: %w", cfg.Backend, err))
	}

	reminders := notify.New(notify.Options{
		Persistence: backend,
		Enabled:     cfg.Notifications.Enabled,
		Logger:      logger,
	})
	st := store.New(store.Options{
		Persistence:          backend,
		Notifier:             reminders,
		Logger:               logger,
		SyncStrategy:         cfg.GetSyncStrategy(),
		EnforceRecurrenceEnd: cfg.EnforceRecurrenceEnd,
	})
	if err := st.Open(cmd.Context()); err != nil {
		_ = st.Close(context.Background())
		_ = backend.Close()
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}

	logger.WithFields(log.Fields{
		"backend":  cfg.Backend,
		"data_dir": cfg.DataDir,
	}).Debug("cli.opened")

	return &app{
		configDir: configDir,
		cfg:       cfg,
		log:       logger,
		backend:   backend,
		reminders: reminders,
		store:     st,
	}, nil
}

// close flushes the store and releases the backend.
func (a *app) close(ctx context.Context) error {
	err := a.store.Close(ctx)
	if cerr := a.backend.Close(); err == nil {
		err = cerr
	}
	return err
}

// generator returns the configured subtask generator.
func (a *app) generator() types.SubtaskGenerator {
	return generate.NewGemini(generate.Config{
		APIKey:  a.cfg.Gemini.APIKey,
		Model:   a.cfg.Gemini.Model,
		BaseURL: a.cfg.Gemini.BaseURL,
	})
}

// withApp opens the app, runs fn, and closes the app. A close failure is
// reported only when fn succeeded.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	runErr := fn(cmd.Context(), a)
	if err := a.close(context.Background()); err != nil && runErr == nil {
		return sysError(fmt.Errorf("close store: %w", err))
	}
	return runErr
}
