package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/placementcal/placement-calendar-bot/internal/dedup"
)

// EventKeyStore satisfies the dedup store contract on top of the event_keys
// table. Keys survive restarts, which is the point: the Gmail search window
// overlaps between runs.
type EventKeyStore struct {
	db *DB
}

// NewEventKeyStore creates a store over an open database.
func NewEventKeyStore(db *DB) *EventKeyStore {
	return &EventKeyStore{db: db}
}

var _ dedup.Store = (*EventKeyStore)(nil)

func (s *EventKeyStore) Has(ctx context.Context, key string) (bool, error) {
	var exists bool

	err := s.db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM event_keys WHERE event_key = $1)", key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query event key: %w", err)
	}

	return exists, nil
}

func (s *EventKeyStore) Put(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.Pool.Exec(ctx,
		"INSERT INTO event_keys (event_key, created_at) VALUES ($1, $2) ON CONFLICT (event_key) DO NOTHING",
		key, at,
	)
	if err != nil {
		return fmt.Errorf("insert event key: %w", err)
	}

	return nil
}

func (s *EventKeyStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM event_keys WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old event keys: %w", err)
	}

	return tag.RowsAffected(), nil
}
