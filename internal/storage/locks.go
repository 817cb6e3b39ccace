package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunLockID is the advisory lock guarding a full processing run. Two
// overlapping invocations would race on the same dedup keys, so the loser
// skips its cycle entirely.
const RunLockID int64 = 7231

// RunLock holds one pooled connection for the lifetime of the advisory lock.
// Session-level advisory locks are tied to the connection, so the connection
// must not go back to the pool while the lock is held.
type RunLock struct {
	conn   *pgxpool.Conn
	lockID int64
}

// TryAcquireRunLock attempts a non-blocking advisory lock. Returns ok=false
// without error when another run holds it.
func (db *DB) TryAcquireRunLock(ctx context.Context, lockID int64) (*RunLock, bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	return &RunLock{conn: conn, lockID: lockID}, true, nil
}

// Release unlocks and returns the connection to the pool.
func (l *RunLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	if _, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.lockID); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}
