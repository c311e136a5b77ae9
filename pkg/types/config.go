package types

import (
	"errors"
	"time"
)

// Config holds backend selection and runtime parameters shared by the CLI and
// the store.
type Config struct {
	Backend      string `json:"backend" yaml:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	SyncStrategy string `json:"sync_strategy" yaml:"sync_strategy"`

	Redis         RedisConfig         `json:"redis" yaml:"redis"`
	Notifications NotificationsConfig `json:"notifications" yaml:"notifications"`
	Gemini        GeminiConfig        `json:"gemini" yaml:"gemini"`

	// EnforceRecurrenceEnd stops advancing a recurring task once the next due
	// date would fall after the rule's end date.
	EnforceRecurrenceEnd bool `json:"enforce_recurrence_end" yaml:"enforce_recurrence_end"`
}

// RedisConfig parameterizes the redis backend.
type RedisConfig struct {
	Addr   string `json:"addr" yaml:"addr"`
	Prefix string `json:"prefix" yaml:"prefix"`
	DB     int    `json:"db" yaml:"db"`
}

// NotificationsConfig parameterizes the local reminder scheduler.
type NotificationsConfig struct {
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// GeminiConfig parameterizes the AI subtask generator.
type GeminiConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Supported backend names.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Sync strategies for the store's background writer.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrSyncStrategyUnknown = errors.New("unknown sync strategy")
	ErrRedisAddrEmpty      = errors.New("redis backend requires an address")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSONL:  true,
	BackendSQLite: true,
	BackendRedis:  true,
}

// knownSyncStrategies lists the sync strategies that Validate accepts. The
// empty string selects the default (immediate).
var knownSyncStrategies = map[string]bool{
	"":            true,
	SyncImmediate: true,
	SyncOnClose:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownSyncStrategies[c.SyncStrategy] {
		return ErrSyncStrategyUnknown
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return ErrRedisAddrEmpty
	}
	return nil
}

// GetSyncStrategy returns the effective sync strategy.
func (c Config) GetSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}
