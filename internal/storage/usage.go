package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dohr-michael/pal/internal/events"
)

// Usage is the accumulated token usage for one model.
type Usage struct {
	Model        string `json:"model"`
	Calls        int64  `json:"calls"`
	TokensInput  int64  `json:"tokens_input"`
	TokensOutput int64  `json:"tokens_output"`
}

// RecordUsage adds one model call and its token counts to the running totals.
func (db *DB) RecordUsage(ctx context.Context, model string, tokensIn, tokensOut int) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO model_usage (model, calls, tokens_input, tokens_output, updated_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(model) DO UPDATE SET
			calls = calls + 1,
			tokens_input = tokens_input + excluded.tokens_input,
			tokens_output = tokens_output + excluded.tokens_output,
			updated_at = excluded.updated_at`,
		model, tokensIn, tokensOut, db.stamp())
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", model, err)
	}
	return nil
}

// Usage returns the accumulated totals per model, ordered by model name.
func (db *DB) Usage(ctx context.Context) ([]Usage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT model, calls, tokens_input, tokens_output FROM model_usage ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	usage := []Usage{}
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.Model, &u.Calls, &u.TokensInput, &u.TokensOutput); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// UsageTracker subscribes to LLM call events and persists token usage per model.
type UsageTracker struct {
	db          *DB
	unsubscribe func()
}

// NewUsageTracker creates a UsageTracker that listens for model response events.
func NewUsageTracker(bus *events.Bus, db *DB) *UsageTracker {
	ut := &UsageTracker{db: db}
	ut.unsubscribe = bus.Subscribe(ut.handleEvent, events.EventLLMCall)
	return ut
}

// Close unsubscribes the tracker from the event bus.
func (ut *UsageTracker) Close() {
	if ut.unsubscribe != nil {
		ut.unsubscribe()
	}
}

func (ut *UsageTracker) handleEvent(e events.Event) {
	payload, ok := events.GetLLMCallPayload(e)
	if !ok {
		return
	}

	if payload.Phase != "response" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ut.db.RecordUsage(ctx, payload.Model, payload.TokensInput, payload.TokensOutput); err != nil {
		slog.Error("usage tracker: record", "model", payload.Model, "error", err)
	}
}
