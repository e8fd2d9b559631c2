package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dohr-michael/pal/internal/memory"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// AppendMessage inserts a message, evicts everything older than the
// maxRetain most recent messages, and returns the retained history.
// Insert, eviction and refetch run in one transaction.
func (db *DB) AppendMessage(ctx context.Context, role memory.Role, content string, maxRetain int) ([]memory.Message, error) {
	if maxRetain <= 0 {
		return nil, ErrInvalidBound
	}

	var history []memory.Message
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_history (role, content, created_at) VALUES (?, ?, ?)`,
			string(role), content, db.stamp()); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM conversation_history
			WHERE id NOT IN (
				SELECT id FROM conversation_history
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			)`, maxRetain); err != nil {
			return fmt.Errorf("evict messages: %w", err)
		}

		var err error
		history, err = recentMessages(ctx, tx, maxRetain)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// History returns up to maxRetain of the most recent messages in chronological order.
func (db *DB) History(ctx context.Context, maxRetain int) ([]memory.Message, error) {
	if maxRetain <= 0 {
		return nil, ErrInvalidBound
	}
	return recentMessages(ctx, db.conn, maxRetain)
}

// ClearHistory removes every message.
func (db *DB) ClearHistory(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM conversation_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func recentMessages(ctx context.Context, q queryer, limit int) ([]memory.Message, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, role, content, created_at FROM conversation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var newestFirst []memory.Message
	for rows.Next() {
		var (
			m         memory.Message
			role      string
			createdAt sql.NullString
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = memory.Role(role)
		if createdAt.Valid {
			ts, err := parseTime(createdAt.String)
			if err != nil {
				return nil, err
			}
			m.CreatedAt = ts
		}
		newestFirst = append(newestFirst, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	// Reverse to chronological order
	history := make([]memory.Message, len(newestFirst))
	for i, m := range newestFirst {
		history[len(newestFirst)-1-i] = m
	}
	return history, nil
}

var _ memory.Store = (*DB)(nil)
