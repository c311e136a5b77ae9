// Package storage implements the persistence gateways the task store saves its
// collections through: JSONL files, a SQLite database, or Redis lists.
package storage

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// Backend is a Persistence gateway that holds resources until Close.
type Backend interface {
	types.Persistence
	Close() error
}

// ErrInvalidCollection is returned for collection names that are not plain
// lowercase identifiers.
var ErrInvalidCollection = errors.New("invalid collection name")

var collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// Open validates cfg and returns the backend it selects. The caller must
// Close the backend when done.
func Open(cfg types.Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case types.BackendJSONL:
		return NewJSONL(cfg.DataDir)
	case types.BackendSQLite:
		return NewSQLite(cfg.DataDir)
	case types.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		r := NewRedis(client, cfg.Redis.Prefix)
		r.owned = true
		return r, nil
	default:
		return nil, types.ErrBackendUnknown
	}
}
