package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage the task list",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all tasks",
				Action: runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<name>",
				Action:    runTasksAdd,
			},
			{
				Name:      "done",
				Usage:     "Mark a task as completed",
				ArgsUsage: "<task_id>",
				Action:    runTasksDone,
			},
			{
				Name:      "toggle",
				Usage:     "Flip a task between pending and completed",
				ArgsUsage: "<task_id>",
				Action:    runTasksToggle,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<task_id>",
				Action:    runTasksRemove,
			},
			{
				Name:   "clear",
				Usage:  "Delete all completed tasks",
				Action: runTasksClear,
			},
		},
		DefaultCommand: "list",
	}
}

// withApp runs fn against a freshly opened store.
func withApp(ctx context.Context, cmd *cli.Command, fn func(*app) error) error {
	setupLogging(cmd, os.Stderr, slog.LevelWarn)

	a, err := openApp(ctx, loadConfig(cmd))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func taskIDArg(cmd *cli.Command, usage string) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("usage: pal tasks %s <task_id>", usage)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func runTasksList(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(a *app) error {
		list, err := a.tasks.List(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return writeTaskTable(os.Stdout, list)
	})
}

func runTasksAdd(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if name == "" {
		return fmt.Errorf("usage: pal tasks add <name>")
	}

	return withApp(ctx, cmd, func(a *app) error {
		t, err := a.tasks.Add(withRequestID(ctx, "cli"), name)
		if err != nil {
			return fmt.Errorf("add task: %w", err)
		}
		if t == nil {
			return fmt.Errorf("failed to add task: name may be empty")
		}
		fmt.Printf("Task added successfully with ID %d: %s\n", t.ID, t.Name)
		return nil
	})
}

func runTasksDone(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd, "done")
	if err != nil {
		return err
	}

	return withApp(ctx, cmd, func(a *app) error {
		t, err := a.tasks.Complete(withRequestID(ctx, "cli"), id)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		if t == nil {
			return fmt.Errorf("task with ID %d not found", id)
		}
		fmt.Printf("Task completed: %s\n", t.Name)
		return nil
	})
}

func runTasksToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd, "toggle")
	if err != nil {
		return err
	}

	return withApp(ctx, cmd, func(a *app) error {
		t, err := a.tasks.Toggle(withRequestID(ctx, "cli"), id)
		if err != nil {
			return fmt.Errorf("toggle task: %w", err)
		}
		if t == nil {
			return fmt.Errorf("task with ID %d not found", id)
		}
		state := "pending"
		if t.Completed {
			state = "completed"
		}
		fmt.Printf("Task %d is now %s: %s\n", t.ID, state, t.Name)
		return nil
	})
}

func runTasksRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd, "rm")
	if err != nil {
		return err
	}

	return withApp(ctx, cmd, func(a *app) error {
		ok, err := a.tasks.Delete(withRequestID(ctx, "cli"), id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if !ok {
			return fmt.Errorf("task with ID %d not found", id)
		}
		fmt.Printf("Task %d deleted.\n", id)
		return nil
	})
}

func runTasksClear(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(a *app) error {
		n, err := a.tasks.ClearCompleted(withRequestID(ctx, "cli"))
		if err != nil {
			return fmt.Errorf("clear completed tasks: %w", err)
		}
		fmt.Printf("Removed %d completed task(s).\n", n)
		return nil
	})
}
