package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL keeps scrape products briefly so bursts of requests for
// the same page do not hammer the upstream. Statuses are recomputed from the
// cached payload on every read, so a short TTL only delays raw data, never
// derived state.
const DefaultSnapshotTTL = 30 * time.Second

// Store caches raw upstream scrape products (sanitized preload JSON and
// heartbeat bodies). It is an optional layer: the service runs purely
// pull-per-request without it.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveSnapshot stores one scrape product under key with the given TTL.
func (s *Store) SaveSnapshot(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves a scrape product. A miss is (nil, nil), not an error.
func (s *Store) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	body, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return body, nil
}

// InvalidateSnapshot drops a cached scrape product.
func (s *Store) InvalidateSnapshot(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// Ping reports whether the cache backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
