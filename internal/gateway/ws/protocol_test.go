package ws

import (
	"encoding/json"
	"testing"
)

func TestNewEventFrame(t *testing.T) {
	f, err := NewEventFrame("task.changed", "req_42", map[string]any{"action": "added", "task_id": 3})
	if err != nil {
		t.Fatalf("NewEventFrame: %v", err)
	}
	if f.Type != FrameTypeEvent {
		t.Fatalf("expected type %q, got %q", FrameTypeEvent, f.Type)
	}
	if f.Event != "task.changed" {
		t.Fatalf("expected event %q, got %q", "task.changed", f.Event)
	}
	if f.RequestID != "req_42" {
		t.Fatalf("expected request_id %q, got %q", "req_42", f.RequestID)
	}

	var p map[string]any
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p["action"] != "added" {
		t.Fatalf("expected payload.action %q, got %v", "added", p["action"])
	}
}

func TestNewResponseFrame_OK(t *testing.T) {
	f, err := NewResponseFrame("req-5", true, map[string]string{"response": "done"}, "")
	if err != nil {
		t.Fatalf("NewResponseFrame: %v", err)
	}
	if f.Type != FrameTypeResponse {
		t.Fatalf("expected type %q, got %q", FrameTypeResponse, f.Type)
	}
	if f.ID != "req-5" {
		t.Fatalf("expected id %q, got %q", "req-5", f.ID)
	}
	if f.OK == nil || !*f.OK {
		t.Fatal("expected ok=true")
	}
	if f.Error != "" {
		t.Fatalf("expected no error, got %q", f.Error)
	}

	var p map[string]string
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p["response"] != "done" {
		t.Fatalf("expected payload.response %q, got %q", "done", p["response"])
	}
}

func TestNewResponseFrame_Error(t *testing.T) {
	f, err := NewResponseFrame("req-6", false, nil, "Task not found")
	if err != nil {
		t.Fatalf("NewResponseFrame: %v", err)
	}
	if f.OK == nil || *f.OK {
		t.Fatal("expected ok=false")
	}
	if f.Error != "Task not found" {
		t.Fatalf("expected error %q, got %q", "Task not found", f.Error)
	}
	if f.Payload != nil {
		t.Fatalf("expected nil payload, got %s", string(f.Payload))
	}
}

func TestUnmarshalFrame_Request(t *testing.T) {
	got, err := UnmarshalFrame([]byte(`{"type":"req","id":"1","method":"complete_task","params":{"id":4}}`))
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if got.Type != FrameTypeRequest || Method(got.Method) != MethodCompleteTask {
		t.Fatalf("unexpected frame: %+v", got)
	}

	var p struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(got.Params, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if p.ID != 4 {
		t.Fatalf("expected params.id 4, got %d", p.ID)
	}
}
