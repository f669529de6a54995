package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lock key only when the caller still owns it, so a
// lock that expired and was re-taken by another holder is left alone.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker implements Locker with SET NX plus a TTL. The TTL bounds how
// long a lock can leak if the process dies mid dispatch.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	owners map[string]string
}

// NewRedisLocker returns a Locker whose locks expire after ttl.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		owners: make(map[string]string),
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (bool, error) {
	token := make([]byte, 16)
	rand.Read(token)
	owner := hex.EncodeToString(token)

	ok, err := l.client.SetNX(ctx, "lock:"+key, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if ok {
		l.mu.Lock()
		l.owners[key] = owner
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	owner, held := l.owners[key]
	delete(l.owners, key)
	l.mu.Unlock()
	if !held {
		return nil
	}
	_, err := releaseScript.Run(ctx, l.client, []string{"lock:" + key}, owner).Result()
	return err
}
