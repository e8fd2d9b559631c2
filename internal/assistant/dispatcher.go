package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/tasks"
)

// TaskRegistry is the subset of the task registry the dispatcher drives.
type TaskRegistry interface {
	Add(ctx context.Context, name string) (*tasks.Task, error)
	List(ctx context.Context) ([]tasks.Task, error)
	Complete(ctx context.Context, id int64) (*tasks.Task, error)
}

// Dispatcher executes model function calls against the task registry.
type Dispatcher struct {
	registry TaskRegistry
	bus      *events.Bus
}

// NewDispatcher creates a dispatcher. bus may be nil.
func NewDispatcher(registry TaskRegistry, bus *events.Bus) *Dispatcher {
	return &Dispatcher{registry: registry, bus: bus}
}

// Execute runs the named function and returns its result as text.
// It never fails: invalid calls and storage errors are reported in the result.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	result, err := d.Invoke(ctx, name, args)
	if err != nil {
		return FailureText(name, err)
	}
	return result
}

// Invoke is Execute with the failure kept as an error. Callers that need to
// flag failures, such as the MCP server, use it directly.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	result, err := d.execute(ctx, name, args)

	payload := events.ToolCallPayload{
		Status:    events.ToolStatusCompleted,
		Name:      name,
		Arguments: args,
		Result:    result,
	}
	if err != nil {
		var callErr *CallError
		if !errors.As(err, &callErr) {
			slog.Error("function call failed", "function", name, "error", err)
		}
		payload.Status = events.ToolStatusFailed
		payload.Result = FailureText(name, err)
	}
	d.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceAssistant, payload))

	return result, err
}

// FailureText renders a failed call as the result text shown to the user.
func FailureText(name string, err error) string {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Message
	}
	return fmt.Sprintf("Error executing %s: %v", name, err)
}

func (d *Dispatcher) execute(ctx context.Context, name string, args map[string]any) (string, error) {
	call, err := ParseCall(name, args)
	if err != nil {
		return "", err
	}
	return d.Run(ctx, call)
}

// Run executes an already validated call.
func (d *Dispatcher) Run(ctx context.Context, call Call) (string, error) {
	switch c := call.(type) {
	case AddTaskCall:
		t, err := d.registry.Add(ctx, c.TaskName)
		if err != nil {
			return "", err
		}
		if t == nil {
			return "Failed to add task. Task name may be empty.", nil
		}
		return fmt.Sprintf("Task added successfully with ID %d: %s", t.ID, t.Name), nil

	case ListTasksCall:
		list, err := d.registry.List(ctx)
		if err != nil {
			return "", err
		}
		return tasks.Format(list), nil

	case CompleteTaskCall:
		t, err := d.registry.Complete(ctx, c.TaskID)
		if err != nil {
			return "", err
		}
		if t == nil {
			return fmt.Sprintf("Task with ID %d not found.", c.TaskID), nil
		}
		return fmt.Sprintf("Task completed: %s", t.Name), nil

	default:
		return "", &CallError{Message: fmt.Sprintf("Unknown function: %T", call)}
	}
}
