package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dohr-michael/pal/internal/gateway/ws"
)

var errTaskNotFound = errors.New("task not found")

type wsTaskParams struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// handleWSRequest serves request frames with the same semantics as the REST API.
func (s *Server) handleWSRequest(ctx context.Context, method ws.Method, raw json.RawMessage) (any, error) {
	var params wsTaskParams
	if len(raw) > 0 && method != ws.MethodSendMessage {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("invalid params")
		}
	}

	switch method {
	case ws.MethodSendMessage:
		var p struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid params")
		}
		reply, err := s.deps.Assistant.Chat(ctx, p.Content)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": reply}, nil

	case ws.MethodListTasks:
		return s.deps.Tasks.List(ctx)

	case ws.MethodAddTask:
		t, err := s.deps.Tasks.Add(ctx, params.Name)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errors.New("task name required")
		}
		return t, nil

	case ws.MethodCompleteTask:
		t, err := s.deps.Tasks.Complete(ctx, params.ID)
		if err == nil && t == nil {
			err = errTaskNotFound
		}
		return t, err

	case ws.MethodToggleTask:
		t, err := s.deps.Tasks.Toggle(ctx, params.ID)
		if err == nil && t == nil {
			err = errTaskNotFound
		}
		return t, err

	case ws.MethodDeleteTask:
		ok, err := s.deps.Tasks.Delete(ctx, params.ID)
		if err == nil && !ok {
			err = errTaskNotFound
		}
		return map[string]bool{"success": ok}, err

	case ws.MethodHistory:
		return s.deps.History.History(ctx)

	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}
