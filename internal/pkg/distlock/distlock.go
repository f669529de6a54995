// Package distlock provides keyed try-locks so that only one dispatch of a
// given campaign runs at a time, even with several server instances behind a
// load balancer.
package distlock

import (
	"context"
	"database/sql"
	"hash/fnv"
	"sync"
)

// Locker hands out non-blocking locks identified by a string key.
type Locker interface {
	// TryLock attempts to take the lock for key. It returns false without
	// blocking when another holder owns it.
	TryLock(ctx context.Context, key string) (bool, error)
	// Unlock releases the lock for key if this locker still owns it.
	Unlock(ctx context.Context, key string) error
}

// AdvisoryLocker implements Locker with PostgreSQL advisory locks. Advisory
// locks are session scoped, so each held lock pins a dedicated connection
// out of the pool until Unlock; releasing on a different pooled connection
// would silently leave the lock held. A crashed holder releases its locks
// when the pinned connection drops.
type AdvisoryLocker struct {
	db *sql.DB

	mu    sync.Mutex
	conns map[string]*sql.Conn
}

// NewAdvisoryLocker returns a Locker backed by pg_try_advisory_lock.
func NewAdvisoryLocker(db *sql.DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, conns: make(map[string]*sql.Conn)}
}

func (l *AdvisoryLocker) TryLock(ctx context.Context, key string) (bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, err
	}

	var ok bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID(key)).Scan(&ok); err != nil {
		conn.Close()
		return false, err
	}
	if !ok {
		conn.Close()
		return false, nil
	}

	l.mu.Lock()
	l.conns[key] = conn
	l.mu.Unlock()
	return true, nil
}

func (l *AdvisoryLocker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	conn, held := l.conns[key]
	delete(l.conns, key)
	l.mu.Unlock()
	if !held {
		return nil
	}

	var released bool
	err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockID(key)).Scan(&released)
	if closeErr := conn.Close(); err == nil {
		err = closeErr
	}
	return err
}

// lockID folds a key into the int64 space PostgreSQL advisory locks use.
func lockID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}
