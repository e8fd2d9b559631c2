package events

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestTypedEvent_UserMessage(t *testing.T) {
	payload := UserMessagePayload{Content: "hello"}
	evt := NewTypedEvent(SourceCLI, payload)

	if evt.Type != EventUserMessage {
		t.Fatalf("expected type %q, got %q", EventUserMessage, evt.Type)
	}
	if !strings.HasPrefix(evt.ID, "evt_") {
		t.Errorf("expected evt_ prefixed id, got %q", evt.ID)
	}
	got, ok := ExtractPayload[UserMessagePayload](evt)
	if !ok {
		t.Fatal("ExtractPayload returned false")
	}
	if got.Content != "hello" {
		t.Fatalf("expected content %q, got %q", "hello", got.Content)
	}
}

func TestTypedEvent_ToolCall(t *testing.T) {
	payload := ToolCallPayload{
		Status:    ToolStatusCompleted,
		Name:      "complete_task",
		Arguments: map[string]any{"task_id": float64(5)},
		Result:    "Task with ID 5 not found.",
	}
	evt := NewTypedEvent(SourceAssistant, payload)

	if evt.Type != EventToolCall {
		t.Fatalf("expected type %q, got %q", EventToolCall, evt.Type)
	}
	got, ok := GetToolCallPayload(evt)
	if !ok {
		t.Fatal("GetToolCallPayload returned false")
	}
	if got.Name != "complete_task" || got.Result != payload.Result {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.Arguments["task_id"] != float64(5) {
		t.Fatalf("expected task_id 5, got %v", got.Arguments["task_id"])
	}
}

func TestTypedEvent_TaskChanged(t *testing.T) {
	evt := NewTypedEvent(SourceTasks, TaskChangedPayload{Action: TaskClearedDone, Count: 3})

	got, ok := GetTaskChangedPayload(evt)
	if !ok {
		t.Fatal("GetTaskChangedPayload returned false")
	}
	if got.Action != TaskClearedDone || got.Count != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestTypedEvent_LLMCall(t *testing.T) {
	evt := NewTypedEvent(SourceModel, LLMCallPayload{
		Phase:        "response",
		Model:        "gemini-2.5-flash",
		TokensInput:  12,
		TokensOutput: 34,
		Duration:     250 * time.Millisecond,
	})

	got, ok := GetLLMCallPayload(evt)
	if !ok {
		t.Fatal("GetLLMCallPayload returned false")
	}
	if got.TokensInput != 12 || got.TokensOutput != 34 {
		t.Fatalf("unexpected tokens %+v", got)
	}
	if got.Duration != 250*time.Millisecond {
		t.Fatalf("expected duration 250ms, got %s", got.Duration)
	}
}

func TestNewTypedEventFromContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-7")
	evt := NewTypedEventFromContext(ctx, SourceHTTP, UserMessagePayload{Content: "hi"})
	if evt.RequestID != "req-7" {
		t.Errorf("expected request id req-7, got %q", evt.RequestID)
	}
}
