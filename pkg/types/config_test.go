package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid jsonl config",
			config:  Config{Backend: BackendJSONL, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: BackendSQLite, DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "redis without address is rejected",
			config:  Config{Backend: BackendRedis},
			wantErr: ErrRedisAddrEmpty,
		},
		{
			name:    "redis with address is valid",
			config:  Config{Backend: BackendRedis, Redis: RedisConfig{Addr: "localhost:6379"}},
			wantErr: nil,
		},
		{
			name:    "unknown sync strategy is rejected",
			config:  Config{Backend: BackendJSONL, SyncStrategy: "batch"},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name:    "on_close sync strategy is valid",
			config:  Config{Backend: BackendJSONL, SyncStrategy: SyncOnClose},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigGetSyncStrategy(t *testing.T) {
	if got := (Config{}).GetSyncStrategy(); got != SyncImmediate {
		t.Fatalf("default sync strategy = %q, want %q", got, SyncImmediate)
	}
	if got := (Config{SyncStrategy: SyncOnClose}).GetSyncStrategy(); got != SyncOnClose {
		t.Fatalf("sync strategy = %q, want %q", got, SyncOnClose)
	}
}
