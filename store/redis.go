package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis persists blobs in Redis, so cache state survives process restarts
// without local disk. The whole state document lives under a single key:
// reads and writes are one round-trip each, matching the overwrite semantics
// of the Store contract. No TTL is applied; the blob lives until overwritten.
type Redis struct {
	rdb redis.UniversalClient
	ns  string // logical namespace to avoid collisions with other users of the server
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store. The client is owned by the store and
// closed by Close.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

func (s *Redis) key(locator string) string { return "rewind:" + s.ns + ":" + locator }

func (s *Redis) Read(ctx context.Context, locator string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(locator)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: redis read %q: %w", locator, err)
	}
	return b, nil
}

func (s *Redis) Write(ctx context.Context, locator string, data []byte) error {
	if err := s.rdb.Set(ctx, s.key(locator), data, 0).Err(); err != nil {
		return fmt.Errorf("store: redis write %q: %w", locator, err)
	}
	return nil
}

func (s *Redis) EnsureContainer(context.Context, string) error { return nil } // keyspace is flat

func (s *Redis) Close(context.Context) error { return s.rdb.Close() }
