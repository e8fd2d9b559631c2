package tasks

import (
	"context"

	"github.com/dohr-michael/pal/internal/events"
)

// Registry is the task API used by the assistant, the HTTP gateway and the CLI.
// It delegates to the store and announces every mutation on the bus.
type Registry struct {
	store Store
	bus   *events.Bus
}

// NewRegistry creates a registry over store. bus may be nil.
func NewRegistry(store Store, bus *events.Bus) *Registry {
	return &Registry{store: store, bus: bus}
}

// Add creates a task. Returns nil if name is empty after trimming.
func (r *Registry) Add(ctx context.Context, name string) (*Task, error) {
	t, err := r.store.AddTask(ctx, name)
	if err != nil || t == nil {
		return t, err
	}
	r.publish(ctx, events.TaskChangedPayload{Action: events.TaskAdded, TaskID: t.ID, Name: t.Name})
	return t, nil
}

// List returns all tasks in creation order.
func (r *Registry) List(ctx context.Context) ([]Task, error) {
	return r.store.ListTasks(ctx)
}

// Get returns the task with id, or nil if it does not exist.
func (r *Registry) Get(ctx context.Context, id int64) (*Task, error) {
	return r.store.GetTask(ctx, id)
}

// Complete marks a task done. Completing a done task refreshes its completion time.
func (r *Registry) Complete(ctx context.Context, id int64) (*Task, error) {
	t, err := r.store.CompleteTask(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	r.publish(ctx, events.TaskChangedPayload{Action: events.TaskCompleted, TaskID: t.ID, Name: t.Name})
	return t, nil
}

// Toggle flips a task between done and pending.
func (r *Registry) Toggle(ctx context.Context, id int64) (*Task, error) {
	t, err := r.store.ToggleTask(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	r.publish(ctx, events.TaskChangedPayload{Action: events.TaskToggled, TaskID: t.ID, Name: t.Name})
	return t, nil
}

// Delete removes a task. Reports whether a task was removed.
func (r *Registry) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := r.store.DeleteTask(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	r.publish(ctx, events.TaskChangedPayload{Action: events.TaskDeleted, TaskID: id})
	return true, nil
}

// ClearCompleted removes all done tasks and returns how many were removed.
func (r *Registry) ClearCompleted(ctx context.Context) (int64, error) {
	n, err := r.store.ClearCompleted(ctx)
	if err != nil || n == 0 {
		return n, err
	}
	r.publish(ctx, events.TaskChangedPayload{Action: events.TaskClearedDone, Count: n})
	return n, nil
}

func (r *Registry) publish(ctx context.Context, payload events.TaskChangedPayload) {
	r.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceTasks, payload))
}
