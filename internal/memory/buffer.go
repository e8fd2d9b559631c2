package memory

import (
	"context"

	"github.com/dohr-michael/pal/internal/events"
)

// Buffer is the conversation history with a fixed retention bound.
// It holds no state of its own: every read goes to the store.
type Buffer struct {
	store Store
	bound int
	bus   *events.Bus
}

// NewBuffer creates a buffer over store. A non-positive bound uses MaxMessages.
func NewBuffer(store Store, bound int, bus *events.Bus) *Buffer {
	if bound <= 0 {
		bound = MaxMessages
	}
	return &Buffer{store: store, bound: bound, bus: bus}
}

// Bound returns the maximum number of retained messages.
func (b *Buffer) Bound() int {
	return b.bound
}

// Append adds a message and returns the retained history in chronological order.
func (b *Buffer) Append(ctx context.Context, role Role, content string) ([]Message, error) {
	return b.store.AppendMessage(ctx, role, content, b.bound)
}

// History returns the retained messages in chronological order.
func (b *Buffer) History(ctx context.Context) ([]Message, error) {
	return b.store.History(ctx, b.bound)
}

// Clear removes all messages.
func (b *Buffer) Clear(ctx context.Context) error {
	if err := b.store.ClearHistory(ctx); err != nil {
		return err
	}
	b.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceMemory, events.HistoryClearedPayload{}))
	return nil
}
