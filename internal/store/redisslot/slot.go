// Package redisslot persists the serialized collection under a single
// redis key, the server-side analog of the page's local-storage slot.
package redisslot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CollectionKey is the one key holding the serialized collection.
const CollectionKey = "tubemark:videos"

// Slot is a redis-backed store.Slot.
type Slot struct {
	client *redis.Client
	key    string
}

// New creates a Slot over client using CollectionKey.
func New(client *redis.Client) *Slot {
	return &Slot{
		client: client,
		key:    CollectionKey,
	}
}

// Read returns the slot contents, nil when the key does not exist.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection slot: %w", err)
	}
	return data, nil
}

// Write replaces the slot contents. The key never expires; the
// collection is the user's data, not a cache.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection slot: %w", err)
	}
	return nil
}
