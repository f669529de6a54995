package verify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emailcraft/studio/internal/domain"
)

// MXCache memoizes MX-lookup outcomes per domain. Contacts in a batch
// frequently share a domain; without a cache every send re-resolves DNS.
type MXCache interface {
	Get(ctx context.Context, dom string) (domain.Validation, bool)
	Set(ctx context.Context, dom string, v domain.Validation)
}

// DefaultCacheTTL bounds how long an MX outcome is reused. MX records can
// appear or disappear; an hour keeps a single dispatch cheap without
// letting stale results live across many campaigns.
const DefaultCacheTTL = time.Hour

// MemoryCache is an in-process MXCache. Safe for concurrent use.
type MemoryCache struct {
	ttl     time.Duration
	entries sync.Map // domain -> memoryEntry
}

type memoryEntry struct {
	result  domain.Validation
	expires time.Time
}

// NewMemoryCache creates an in-process cache. ttl <= 0 uses DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, dom string) (domain.Validation, bool) {
	raw, ok := c.entries.Load(dom)
	if !ok {
		return domain.Validation{}, false
	}
	entry := raw.(memoryEntry)
	if time.Now().After(entry.expires) {
		c.entries.Delete(dom)
		return domain.Validation{}, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, dom string, v domain.Validation) {
	c.entries.Store(dom, memoryEntry{result: v, expires: time.Now().Add(c.ttl)})
}

// RedisCache is a shared MXCache backed by Redis, so multiple server
// instances benefit from each other's lookups. Cache errors degrade to
// a miss; a broken Redis must never fail a validation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache. ttl <= 0 uses DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "mx:"}
}

func (c *RedisCache) Get(ctx context.Context, dom string) (domain.Validation, bool) {
	val, err := c.client.Get(ctx, c.prefix+dom).Result()
	if err == redis.Nil {
		return domain.Validation{}, false
	}
	if err != nil {
		log.Printf("[verify] redis get %s: %v", dom, err)
		return domain.Validation{}, false
	}
	if val == "" {
		return domain.Validation{IsValid: true}, true
	}
	return domain.Validation{IsValid: false, Reason: val}, true
}

func (c *RedisCache) Set(ctx context.Context, dom string, v domain.Validation) {
	// Valid domains store the empty string; invalid ones store the reason.
	if err := c.client.Set(ctx, c.prefix+dom, v.Reason, c.ttl).Err(); err != nil {
		log.Printf("[verify] redis set %s: %v", dom, err)
	}
}
