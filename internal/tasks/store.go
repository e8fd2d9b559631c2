package tasks

import "context"

// Store defines the persistence interface for tasks.
//
// Absence (empty name on add, unknown id) is reported as a nil task and a nil
// error; errors are reserved for storage failures.
type Store interface {
	AddTask(ctx context.Context, name string) (*Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	CompleteTask(ctx context.Context, id int64) (*Task, error)
	ToggleTask(ctx context.Context, id int64) (*Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ClearCompleted(ctx context.Context) (int64, error)
}
