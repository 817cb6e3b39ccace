package storage

import (
	"context"
	"fmt"
	"time"
)

// MarkMessageProcessed records the terminal disposition for one message so
// later runs can skip it without re-evaluating.
func (db *DB) MarkMessageProcessed(ctx context.Context, messageID, threadID, disposition, reason string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO processed_messages (message_id, thread_id, disposition, reason)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (message_id) DO UPDATE SET disposition = $3, reason = $4, processed_at = now()`,
		messageID, threadID, disposition, reason,
	)
	if err != nil {
		return fmt.Errorf("mark message processed: %w", err)
	}

	return nil
}

// IsMessageProcessed reports whether a message already has a recorded
// disposition.
func (db *DB) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM processed_messages WHERE message_id = $1)", messageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query processed message: %w", err)
	}

	return exists, nil
}

// DeleteProcessedOlderThan trims old dispositions past the retention window.
func (db *DB) DeleteProcessedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM processed_messages WHERE processed_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old processed messages: %w", err)
	}

	return tag.RowsAffected(), nil
}
