package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dohr-michael/pal/internal/tasks"
)

const selectTask = `SELECT id, name, completed, created_at, completed_at FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*tasks.Task, error) {
	var (
		t           tasks.Task
		completed   int64
		createdAt   sql.NullString
		completedAt sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &completed, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	t.Completed = completed != 0

	if createdAt.Valid {
		ts, err := parseTime(createdAt.String)
		if err != nil {
			return nil, err
		}
		t.CreatedAt = ts
	}
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		t.CompletedAt = &ts
	}
	return &t, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTask(ctx context.Context, q queryRower, id int64) (*tasks.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, selectTask+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// AddTask inserts a task with the trimmed name.
// An empty or whitespace-only name creates nothing and returns nil.
func (db *DB) AddTask(ctx context.Context, name string) (*tasks.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	now := db.now()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (name, completed, created_at) VALUES (?, 0, ?)`,
		name, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return &tasks.Task{ID: id, Name: name, CreatedAt: now.UTC()}, nil
}

// ListTasks returns all tasks in creation order.
func (db *DB) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	rows, err := db.conn.QueryContext(ctx, selectTask+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	list := []tasks.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// GetTask returns the task with id, or nil if it does not exist.
func (db *DB) GetTask(ctx context.Context, id int64) (*tasks.Task, error) {
	return getTask(ctx, db.conn, id)
}

// CompleteTask marks a task completed and stamps completed_at, returning the
// updated row. Completing an already-completed task re-stamps completed_at.
// Returns nil if the task does not exist.
func (db *DB) CompleteTask(ctx context.Context, id int64) (*tasks.Task, error) {
	var out *tasks.Task
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`,
			db.stamp(), id)
		if err != nil {
			return fmt.Errorf("complete task %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete task %d: %w", id, err)
		}
		if n == 0 {
			return nil
		}

		out, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleTask flips a task's completion state. completed_at is stamped when
// the task becomes completed and cleared when it is reopened.
// Returns nil if the task does not exist.
func (db *DB) ToggleTask(ctx context.Context, id int64) (*tasks.Task, error) {
	var out *tasks.Task
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil || current == nil {
			return err
		}

		if current.Completed {
			_, err = tx.ExecContext(ctx,
				`UPDATE tasks SET completed = 0, completed_at = NULL WHERE id = ?`, id)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`, db.stamp(), id)
		}
		if err != nil {
			return fmt.Errorf("toggle task %d: %w", id, err)
		}

		out, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTask removes a task. It reports whether a row was deleted.
func (db *DB) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return n > 0, nil
}

// ClearCompleted removes every completed task and returns how many were removed.
func (db *DB) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear completed tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear completed tasks: %w", err)
	}
	return n, nil
}

var _ tasks.Store = (*DB)(nil)
