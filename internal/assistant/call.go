package assistant

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dohr-michael/pal/internal/models"
)

// Call is a validated function call. The set of implementations is closed.
type Call interface {
	FuncName() string
	isCall()
}

// AddTaskCall requests a new task. TaskName may be empty; the registry rejects it.
type AddTaskCall struct {
	TaskName string
}

// ListTasksCall requests the formatted task list.
type ListTasksCall struct{}

// CompleteTaskCall requests that a task be marked done.
type CompleteTaskCall struct {
	TaskID int64
}

func (AddTaskCall) FuncName() string      { return models.FuncAddTask }
func (ListTasksCall) FuncName() string    { return models.FuncListTasks }
func (CompleteTaskCall) FuncName() string { return models.FuncCompleteTask }

func (AddTaskCall) isCall()      {}
func (ListTasksCall) isCall()    {}
func (CompleteTaskCall) isCall() {}

// CallError is a call that cannot be executed. Its message is shown to the user as the result.
type CallError struct {
	Message string
}

func (e *CallError) Error() string {
	return e.Message
}

// ParseCall validates a raw function call from the model.
func ParseCall(name string, args map[string]any) (Call, error) {
	switch name {
	case models.FuncAddTask:
		if err := checkArgs(name, args, "task_name"); err != nil {
			return nil, err
		}
		raw, ok := args["task_name"]
		if !ok || raw == nil {
			return AddTaskCall{}, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, &CallError{Message: fmt.Sprintf("Error executing %s: task_name must be a string", name)}
		}
		return AddTaskCall{TaskName: s}, nil

	case models.FuncListTasks:
		if err := checkArgs(name, args); err != nil {
			return nil, err
		}
		return ListTasksCall{}, nil

	case models.FuncCompleteTask:
		if err := checkArgs(name, args, "task_id"); err != nil {
			return nil, err
		}
		raw, ok := args["task_id"]
		if !ok || raw == nil {
			return nil, &CallError{Message: "Error: No task_id provided."}
		}
		id, err := toInt64(raw)
		if err != nil {
			return nil, &CallError{Message: fmt.Sprintf("Error executing %s: %v", name, err)}
		}
		return CompleteTaskCall{TaskID: id}, nil

	default:
		return nil, &CallError{Message: fmt.Sprintf("Unknown function: %s", name)}
	}
}

// checkArgs rejects keys outside the declared parameters of fn. The first
// offending key in sorted order is reported.
func checkArgs(fn string, args map[string]any, allowed ...string) error {
	var extra []string
	for k := range args {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return &CallError{Message: fmt.Sprintf("Error executing %s: unexpected argument %q", fn, extra[0])}
}

// toInt64 accepts JSON numbers (float64 from the model SDK, json.Number from
// MCP), Go integer types and numeric strings.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("task_id must be an integer, got %q", n.String())
		}
		return floatToInt64(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("task_id must be an integer, got %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("task_id must be an integer, got %T", v)
	}
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("task_id must be an integer, got %v", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("task_id out of range, got %v", f)
	}
	return int64(f), nil
}
