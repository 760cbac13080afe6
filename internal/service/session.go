package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"go.uber.org/zap"
)

// KeyValueStore is the cache contract the session cache runs on.
// pkg/redis.Client satisfies it; tests use an in-memory map.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SessionCache keeps short-lived snapshots of resolved user rows keyed by
// email, saving a store round-trip on every authenticated request. Entries
// must be overwritten or invalidated whenever the underlying row changes,
// or the auth gate serves stale data until the TTL runs out.
type SessionCache struct {
	store KeyValueStore
	ttl   time.Duration
}

func NewSessionCache(store KeyValueStore, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &SessionCache{store: store, ttl: ttl}
}

func sessionKey(email string) string {
	return constants.CacheKeySession + email
}

// Get returns the cached user snapshot for email, if present. Cache
// errors degrade to a miss; the store remains the source of truth.
func (c *SessionCache) Get(ctx context.Context, email string) (*model.User, bool) {
	data, found, err := c.store.Get(ctx, sessionKey(email))
	if err != nil {
		logger.GetLogger().Warn("Session cache read failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		logger.GetLogger().Warn("Session cache entry corrupt, dropping",
			zap.String("email", email),
			zap.Error(err),
		)
		_ = c.store.Delete(ctx, sessionKey(email))
		return nil, false
	}

	return &user, true
}

// Set stores a full snapshot of the user row under its email
func (c *SessionCache) Set(ctx context.Context, user *model.User) {
	data, err := json.Marshal(user)
	if err != nil {
		logger.GetLogger().Warn("Failed to serialize session entry",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return
	}

	if err := c.store.Set(ctx, sessionKey(user.Email), data, c.ttl); err != nil {
		logger.GetLogger().Warn("Session cache write failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
}

// Invalidate drops the cached snapshot for email
func (c *SessionCache) Invalidate(ctx context.Context, email string) {
	if err := c.store.Delete(ctx, sessionKey(email)); err != nil {
		logger.GetLogger().Warn("Session cache invalidation failed",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
