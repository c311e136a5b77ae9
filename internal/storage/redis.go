package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces collection keys when no prefix is configured.
const DefaultRedisPrefix = "taskpad:"

// Redis stores each collection as a list under <prefix><collection>.
type Redis struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedis wraps an existing client. The caller keeps ownership of client;
// Close does not close it.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Load returns the records of collection. A missing key loads as empty.
func (r *Redis) Load(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	values, err := r.client.LRange(ctx, r.key(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", collection, err)
	}

	records := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		if !json.Valid([]byte(v)) {
			continue
		}
		records = append(records, json.RawMessage(v))
	}
	return records, nil
}

// Save replaces the list for collection inside a MULTI/EXEC block so readers
// never observe a partially written collection.
func (r *Redis) Save(ctx context.Context, collection string, records []json.RawMessage) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	key := r.key(collection)
	values := make([]any, len(records))
	for i, rec := range records {
		values[i] = string(rec)
	}

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(values) > 0 {
			p.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", collection, err)
	}
	return nil
}

// Close closes the client if this backend created it.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) key(collection string) string {
	return r.prefix + collection
}
