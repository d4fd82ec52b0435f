package guestcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"wasteops/internal/domain/identity"
	"wasteops/internal/infra"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "guest:contact:"
	legacyKeyPrefix = "guest:contact:legacy:"
)

// Store persists guest contact identities in Redis under a well-known key
// per guest. Reads treat malformed or missing entries as cache misses.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Get returns the stored identity for a guest key, or nil when absent.
// A record that fails to decode is discarded and reported as absent.
func (s *Store) Get(ctx context.Context, guestKey string) (*identity.Guest, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+guestKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to read guest identity", err)
	}

	var g identity.Guest
	if err := json.Unmarshal(raw, &g); err != nil {
		slog.Warn("discarding malformed guest identity record", "guest_key", guestKey, "error", err)
		return nil, nil
	}
	return &g, nil
}

// GetLegacy returns the raw legacy single-field record, or "" when absent.
func (s *Store) GetLegacy(ctx context.Context, guestKey string) (string, error) {
	raw, err := s.rdb.Get(ctx, legacyKeyPrefix+guestKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", infra.WrapRepoErr("failed to read legacy guest identity", err)
	}
	return raw, nil
}

// Put stores the identity under the new key shape with the validity TTL.
// The legacy record, if any, is left in place; new storage wins on read.
func (s *Store) Put(ctx context.Context, guestKey string, g identity.Guest) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return infra.WrapRepoErr("failed to encode guest identity", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+guestKey, raw, s.ttl).Err(); err != nil {
		return infra.WrapRepoErr("failed to write guest identity", err)
	}
	return nil
}

// Connect initializes the Redis client and verifies connectivity.
func Connect(addr, password string, db int) (*redis.Client, func(), error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, infra.WrapRepoErr("failed to connect to redis", err)
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("failed to close redis connection", "error", err)
		}
	}

	return rdb, cleanup, nil
}
