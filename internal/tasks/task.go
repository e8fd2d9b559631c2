// Package tasks provides the task registry: a thin, stateless API over the
// persistent store plus display formatting.
package tasks

import (
	"fmt"
	"strings"
	"time"
)

// Task is a single to-do item. IDs are assigned by the store and never reused.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

const (
	markerDone    = "✓"
	markerPending = "○"

	// NoTasks is what Format returns for an empty list.
	NoTasks = "No tasks found."
)

// Format renders tasks one per line as "[id] marker name".
func Format(list []Task) string {
	if len(list) == 0 {
		return NoTasks
	}

	lines := make([]string, len(list))
	for i, t := range list {
		marker := markerPending
		if t.Completed {
			marker = markerDone
		}
		lines[i] = fmt.Sprintf("[%d] %s %s", t.ID, marker, t.Name)
	}
	return strings.Join(lines, "\n")
}
