package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Stats summarizes the store contents.
type Stats struct {
	TotalTasks           int64 `json:"total_tasks"`
	CompletedTasks       int64 `json:"completed_tasks"`
	PendingTasks         int64 `json:"pending_tasks"`
	ConversationMessages int64 `json:"conversation_messages"`
}

// Stats returns task and message counts read from a single snapshot.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0) FROM tasks`,
		).Scan(&s.TotalTasks, &s.CompletedTasks); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM conversation_history`,
		).Scan(&s.ConversationMessages); err != nil {
			return fmt.Errorf("count messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	s.PendingTasks = s.TotalTasks - s.CompletedTasks
	return s, nil
}
