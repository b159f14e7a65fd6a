package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

const keyPrefix = "storefront:cart:"

// SnapshotStore implements repository.CartSnapshotStore for one session
// using a Redis string holding the JSON item list.
type SnapshotStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotStore creates the store for sessionID. Every save refreshes ttl.
func NewSnapshotStore(client *redis.Client, sessionID string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		key:    Key(sessionID),
		ttl:    ttl,
	}
}

// NewFactory returns a repository.SnapshotStoreFactory sharing client.
func NewFactory(client *redis.Client, ttl time.Duration) repository.SnapshotStoreFactory {
	return func(sessionID string) repository.CartSnapshotStore {
		return NewSnapshotStore(client, sessionID, ttl)
	}
}

// Key returns the Redis key holding the snapshot of sessionID.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Load reads and decodes the snapshot. A missing key is an empty cart.
func (s *SnapshotStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.CartItem{}, nil
		}
		return nil, fmt.Errorf("redis get cart snapshot: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrMalformedSnapshot, err)
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

// Save writes the full list, replacing any previous snapshot.
func (s *SnapshotStore) Save(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart snapshot: %w", err)
	}
	return nil
}
