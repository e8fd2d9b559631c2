package memory

import "context"

// Store defines the persistence interface for conversation history.
// AppendMessage must insert and evict atomically.
type Store interface {
	AppendMessage(ctx context.Context, role Role, content string, maxRetain int) ([]Message, error)
	History(ctx context.Context, maxRetain int) ([]Message, error)
	ClearHistory(ctx context.Context) error
}
