// Command task_flow exercises the task lifecycle against a running pal gateway.
//
// It connects over WebSocket, adds a task, completes it, toggles it back,
// checks the listing after each step, deletes it, and verifies that a
// task.changed event was broadcast for every mutation.
//
// Usage: task_flow -gateway ws://127.0.0.1:PORT/api/ws
//
// Exit codes:
//
//	0 = all checks passed
//	1 = a check failed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	wsclient "github.com/dohr-michael/pal/clients/ws"
	"github.com/dohr-michael/pal/internal/events"
	wsprotocol "github.com/dohr-michael/pal/internal/gateway/ws"
	"github.com/dohr-michael/pal/internal/tasks"
)

func main() {
	gatewayURL := flag.String("gateway", "ws://127.0.0.1:5000/api/ws", "Gateway WS URL")
	name := flag.String("name", "e2e task flow", "Name of the task to create")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *gatewayURL, *name); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func run(ctx context.Context, gatewayURL, name string) error {
	// ── Step 1: Connect ────────────────────────────────────────────────
	client, err := wsclient.Dial(ctx, gatewayURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer client.Close()

	changes := 0
	client.OnEvent(func(f wsprotocol.Frame) {
		if events.EventType(f.Event) == events.EventTaskChanged {
			changes++
		}
	})

	// ── Step 2: Add ────────────────────────────────────────────────────
	var added tasks.Task
	if err := client.Call(wsprotocol.MethodAddTask, map[string]string{"name": name}, &added); err != nil {
		return fmt.Errorf("add_task: %w", err)
	}
	if added.Name != name || added.Completed {
		return fmt.Errorf("add_task: unexpected task %+v", added)
	}
	fmt.Printf("added task %d\n", added.ID)

	// ── Step 3: Complete, then toggle back ─────────────────────────────
	var done tasks.Task
	if err := client.Call(wsprotocol.MethodCompleteTask, map[string]int64{"id": added.ID}, &done); err != nil {
		return fmt.Errorf("complete_task: %w", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		return fmt.Errorf("complete_task: task not completed: %+v", done)
	}
	if err := expectListed(client, added.ID, true); err != nil {
		return err
	}

	var toggled tasks.Task
	if err := client.Call(wsprotocol.MethodToggleTask, map[string]int64{"id": added.ID}, &toggled); err != nil {
		return fmt.Errorf("toggle_task: %w", err)
	}
	if toggled.Completed || toggled.CompletedAt != nil {
		return fmt.Errorf("toggle_task: task still completed: %+v", toggled)
	}
	if err := expectListed(client, added.ID, false); err != nil {
		return err
	}

	// ── Step 4: Delete, twice ──────────────────────────────────────────
	if err := client.Call(wsprotocol.MethodDeleteTask, map[string]int64{"id": added.ID}, nil); err != nil {
		return fmt.Errorf("delete_task: %w", err)
	}
	if err := client.Call(wsprotocol.MethodDeleteTask, map[string]int64{"id": added.ID}, nil); err == nil {
		return fmt.Errorf("delete_task: second delete should report not found")
	}

	// ── Step 5: Events ─────────────────────────────────────────────────
	// Broadcasts are asynchronous: keep issuing cheap requests so pending
	// event frames get read, until all four mutations were seen.
	for attempt := 0; changes < 4; attempt++ {
		if attempt == 20 {
			return fmt.Errorf("expected 4 task.changed events, saw %d", changes)
		}
		if err := client.Call(wsprotocol.MethodListTasks, nil, nil); err != nil {
			return fmt.Errorf("list_tasks: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Printf("saw %d task.changed events\n", changes)
	return nil
}

func expectListed(client *wsclient.Client, id int64, completed bool) error {
	var list []tasks.Task
	if err := client.Call(wsprotocol.MethodListTasks, nil, &list); err != nil {
		return fmt.Errorf("list_tasks: %w", err)
	}
	for _, t := range list {
		if t.ID == id {
			if t.Completed != completed {
				return fmt.Errorf("task %d completed=%v, want %v", id, t.Completed, completed)
			}
			return nil
		}
	}
	return fmt.Errorf("task %d missing from list", id)
}
