package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/errors"
)

// importLockKey identifies "the import job" in pg_advisory_lock space.
// Fixed so every process contends for the same token.
const importLockKey int64 = 874_201_156

// LockManager guards the import pipeline so only one run is active
// cluster-wide
type LockManager interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdvisoryLock implements LockManager on a Postgres session advisory
// lock. The lock is visible across processes and pooled connections, and
// Postgres releases it automatically if the holding connection dies, so
// a crashed import never wedges the system.
type AdvisoryLock struct {
	db     *sql.DB
	logger *logrus.Logger

	mu   sync.Mutex
	conn *sql.Conn
}

// NewAdvisoryLock creates a new advisory lock manager
func NewAdvisoryLock(db *sql.DB, logger *logrus.Logger) *AdvisoryLock {
	return &AdvisoryLock{db: db, logger: logger}
}

// Acquire attempts to take the import lock without blocking. Returns
// true if this manager now holds it, false if another holder has it.
// The session is pinned to a dedicated connection for the lock's
// lifetime so pool rotation cannot silently drop it.
func (l *AdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		// Already held by this manager.
		return true, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get connection for advisory lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, importLockKey).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Close()
		return false, nil
	}

	l.conn = conn
	l.logger.WithField("lock_key", importLockKey).Info("Acquired import advisory lock")
	return true, nil
}

// Release releases the import lock and returns the pinned connection to
// the pool. Releasing an unheld lock is a no-op.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	var released bool
	err := l.conn.QueryRowContext(ctx, `SELECT pg_advisory_unlock($1)`, importLockKey).Scan(&released)
	closeErr := l.conn.Close()
	l.conn = nil

	if err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close lock connection: %w", closeErr)
	}
	if !released {
		l.logger.Warn("Advisory lock was not held by this session at release")
	} else {
		l.logger.WithField("lock_key", importLockKey).Info("Released import advisory lock")
	}
	return nil
}

// WithLock runs fn while holding the import lock. If another holder has
// the lock, a conflict error is returned and fn is never invoked. The
// lock is released on every exit path, including panics.
func (l *AdvisoryLock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	acquired, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		return errors.NewSyncInProgressError()
	}

	defer func() {
		// Release must not inherit the caller's cancellation, otherwise
		// a cancelled run would leak the lock until the connection dies.
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			l.logger.WithError(err).Error("Failed to release advisory lock")
		}
	}()

	return fn(ctx)
}
