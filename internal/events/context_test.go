package events

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-42")
	got := RequestIDFromContext(ctx)
	if got != "req-42" {
		t.Errorf("got %q, want %q", got, "req-42")
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	got := RequestIDFromContext(context.Background())
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestRequestIDEmptyStringNoOp(t *testing.T) {
	bg := context.Background()
	ctx := ContextWithRequestID(bg, "")
	if ctx != bg {
		t.Error("expected same context when id is empty")
	}
}
