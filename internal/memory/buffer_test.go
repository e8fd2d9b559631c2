package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dohr-michael/pal/internal/events"
)

type sliceStore struct {
	mu       sync.Mutex
	messages []Message
}

func (s *sliceStore) AppendMessage(_ context.Context, role Role, content string, maxRetain int) ([]Message, error) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{ID: int64(len(s.messages) + 1), Role: role, Content: content, CreatedAt: time.Now()})
	if len(s.messages) > maxRetain {
		s.messages = s.messages[len(s.messages)-maxRetain:]
	}
	s.mu.Unlock()
	return s.History(context.Background(), maxRetain)
}

func (s *sliceStore) History(_ context.Context, maxRetain int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if len(s.messages) > maxRetain {
		start = len(s.messages) - maxRetain
	}
	return append([]Message{}, s.messages[start:]...), nil
}

func (s *sliceStore) ClearHistory(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}

func TestNewBuffer_DefaultBound(t *testing.T) {
	b := NewBuffer(&sliceStore{}, 0, nil)
	if b.Bound() != MaxMessages {
		t.Errorf("Bound() = %d, want %d", b.Bound(), MaxMessages)
	}
}

func TestBuffer_Append(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(&sliceStore{}, 3, nil)

	for _, c := range []string{"a", "b", "c", "d"} {
		if _, err := b.Append(ctx, RoleUser, c); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	history, err := b.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 || history[0].Content != "b" || history[2].Content != "d" {
		t.Errorf("History = %+v", history)
	}
}

func TestBuffer_ClearPublishes(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(8)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(1, events.EventHistoryCleared)
	defer unsub()

	b := NewBuffer(&sliceStore{}, 10, bus)
	if _, err := b.Append(ctx, RoleUser, "hello"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("history.cleared not published")
	}

	history, _ := b.History(ctx)
	if len(history) != 0 {
		t.Errorf("History after Clear = %+v", history)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		err  bool
	}{
		{"user", RoleUser, false},
		{"model", RoleModel, false},
		{"Assistant", RoleModel, false},
		{" USER ", RoleUser, false},
		{"system", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseRole(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
