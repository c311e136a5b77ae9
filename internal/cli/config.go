package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/taskpad/internal/generate"
	"github.com/mesh-intelligence/taskpad/internal/paths"
	"github.com/mesh-intelligence/taskpad/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend              = "backend"
	cfgKeyDataDir              = "data_dir"
	cfgKeySyncStrategy         = "sync_strategy"
	cfgKeyRedisAddr            = "redis.addr"
	cfgKeyRedisPrefix          = "redis.prefix"
	cfgKeyRedisDB              = "redis.db"
	cfgKeyNotificationsEnabled = "notifications.enabled"
	cfgKeySweepInterval        = "notifications.sweep_interval"
	cfgKeyGeminiAPIKey         = "gemini.api_key"
	cfgKeyGeminiModel          = "gemini.model"
	cfgKeyGeminiBaseURL        = "gemini.base_url"
	cfgKeyEnforceEnd           = "recurrence.enforce_end_date"
	cfgKeyLogLevel             = "log_level"

	defaultBackend       = types.BackendJSONL
	defaultSweepInterval = 30 * time.Second
	defaultLogLevel      = "warn"
)

// configFile is the structure written to config.yaml. The Gemini API key is
// never written; it comes from the file if the user adds it, or from
// GEMINI_API_KEY.
type configFile struct {
	Backend       string              `yaml:"backend"`
	DataDir       string              `yaml:"data_dir,omitempty"`
	SyncStrategy  string              `yaml:"sync_strategy"`
	LogLevel      string              `yaml:"log_level"`
	Notifications notificationsConfig `yaml:"notifications"`
	Gemini        geminiConfig        `yaml:"gemini"`
	Recurrence    recurrenceConfig    `yaml:"recurrence"`
}

type notificationsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SweepInterval string `yaml:"sweep_interval"`
}

type geminiConfig struct {
	Model string `yaml:"model"`
}

type recurrenceConfig struct {
	EnforceEndDate bool `yaml:"enforce_end_date"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:      defaultBackend,
		DataDir:      dataDir,
		SyncStrategy: types.SyncImmediate,
		LogLevel:     defaultLogLevel,
		Notifications: notificationsConfig{
			Enabled:       true,
			SweepInterval: defaultSweepInterval.String(),
		},
		Gemini:     geminiConfig{Model: generate.DefaultModel},
		Recurrence: recurrenceConfig{EnforceEndDate: true},
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if _, err := writeConfigIfMissing(paths.ConfigFile(configDir), ""); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyRedisPrefix, "")
	v.SetDefault(cfgKeyNotificationsEnabled, true)
	v.SetDefault(cfgKeySweepInterval, defaultSweepInterval)
	v.SetDefault(cfgKeyGeminiModel, generate.DefaultModel)
	v.SetDefault(cfgKeyEnforceEnd, true)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	if err := v.BindEnv(cfgKeyGeminiAPIKey, "TASKPAD_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// buildConfig turns the loaded settings into a validated types.Config. The
// data directory follows flag > config.yaml > TASKPAD_DATA_DIR > default.
func buildConfig(v *viper.Viper) (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:      v.GetString(cfgKeyBackend),
		DataDir:      dataDir,
		SyncStrategy: v.GetString(cfgKeySyncStrategy),
		Redis: types.RedisConfig{
			Addr:   v.GetString(cfgKeyRedisAddr),
			Prefix: v.GetString(cfgKeyRedisPrefix),
			DB:     v.GetInt(cfgKeyRedisDB),
		},
		Notifications: types.NotificationsConfig{
			Enabled:       v.GetBool(cfgKeyNotificationsEnabled),
			SweepInterval: v.GetDuration(cfgKeySweepInterval),
		},
		Gemini: types.GeminiConfig{
			APIKey:  v.GetString(cfgKeyGeminiAPIKey),
			Model:   v.GetString(cfgKeyGeminiModel),
			BaseURL: v.GetString(cfgKeyGeminiBaseURL),
		},
		EnforceRecurrenceEnd: v.GetBool(cfgKeyEnforceEnd),
	}
	if cfg.Notifications.SweepInterval <= 0 {
		cfg.Notifications.SweepInterval = defaultSweepInterval
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. Returns true when a file was written.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
