package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// commands is the slice of the go-redis API the cache uses. Satisfied by
// *redis.Client.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdentityCache caches sanitized identities keyed by token on the verify hot
// path. Lifetime is bounded twice: a Redis TTL garbage-collects entries, and
// a logical expiry embedded in each entry is checked against the injectable
// clock on every read, so a stale entry is never served even when the
// store-side sweep lags. Cache failures degrade to a miss.
type IdentityCache struct {
	client commands
	log    zerolog.Logger
	now    func() time.Time
}

func NewIdentityCache(client *redis.Client, log zerolog.Logger) *IdentityCache {
	return &IdentityCache{client: client, log: log, now: time.Now}
}

type cachedIdentity struct {
	Identity  *domain.Credential `json:"identity"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func (c *IdentityCache) Get(ctx context.Context, token string) (*domain.Credential, bool) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("identity cache read failed")
		}
		return nil, false
	}

	var entry cachedIdentity
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Identity, true
}

func (c *IdentityCache) Set(ctx context.Context, token string, identity *domain.Credential, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	entry := cachedIdentity{Identity: identity, ExpiresAt: c.now().Add(ttl)}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(token), raw, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("identity cache write failed")
	}
}

func (c *IdentityCache) Drop(ctx context.Context, token string) {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		c.log.Warn().Err(err).Msg("identity cache delete failed")
	}
}

// key hashes the token so full JWTs never appear in Redis keys.
func (c *IdentityCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:" + hex.EncodeToString(sum[:16])
}
