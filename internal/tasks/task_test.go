package tasks

import (
	"testing"
	"time"
)

func TestFormat_Empty(t *testing.T) {
	if got := Format(nil); got != "No tasks found." {
		t.Errorf("Format(nil) = %q", got)
	}
	if got := Format([]Task{}); got != NoTasks {
		t.Errorf("Format([]) = %q", got)
	}
}

func TestFormat(t *testing.T) {
	now := time.Now()
	list := []Task{
		{ID: 1, Name: "buy milk", Completed: true, CreatedAt: now, CompletedAt: &now},
		{ID: 2, Name: "call mom", CreatedAt: now},
	}

	want := "[1] ✓ buy milk\n[2] ○ call mom"
	if got := Format(list); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
