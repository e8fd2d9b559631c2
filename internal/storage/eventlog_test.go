package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/pal/internal/events"
)

func dayFile(dir string, ts time.Time) string {
	return filepath.Join(dir, "events-"+ts.UTC().Format(time.DateOnly)+".jsonl")
}

func newLoggedBus(t *testing.T, dir string) *events.Bus {
	t.Helper()
	bus := events.NewBus(64)
	el := NewEventLogger(dir, bus)
	t.Cleanup(func() {
		el.Close()
		bus.Close()
	})
	return bus
}

// countLines decodes every JSONL line in path; a missing file counts as zero.
func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var count int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e events.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e), "line %d", count)
		count++
	}
	return count
}

func waitForLines(t *testing.T, path string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return countLines(t, path) >= n
	}, 2*time.Second, 10*time.Millisecond, "%s: want %d lines", path, n)
}

func TestEventLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := newLoggedBus(t, dir)

	now := time.Now()
	bus.Publish(events.Event{
		ID:        "evt-1",
		Type:      events.EventUserMessage,
		Timestamp: now,
		Source:    events.SourceCLI,
		Payload:   map[string]any{"content": "hello"},
	})

	path := dayFile(dir, now)
	waitForLines(t, path, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, events.EventUserMessage, got.Type)
}

func TestEventLogger_RequestsShareDailyFile(t *testing.T) {
	dir := t.TempDir()
	bus := newLoggedBus(t, dir)

	day := time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)
	for i, id := range []string{"req_a", "req_b", "req_c", ""} {
		bus.Publish(events.Event{
			ID:        string(rune('a' + i)),
			RequestID: id,
			Type:      events.EventAssistantMessage,
			Timestamp: day,
			Source:    events.SourceHTTP,
		})
	}
	bus.Publish(events.Event{
		ID:        "next-day",
		RequestID: "req_d",
		Type:      events.EventAssistantMessage,
		Timestamp: day.Add(time.Hour),
		Source:    events.SourceHTTP,
	})

	waitForLines(t, filepath.Join(dir, "events-2026-03-04.jsonl"), 4)
	waitForLines(t, filepath.Join(dir, "events-2026-03-05.jsonl"), 1)
	assert.Equal(t, 4, countLines(t, filepath.Join(dir, "events-2026-03-04.jsonl")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one file per day, not per request")
}

func TestEventLogger_AllEventsPersisted(t *testing.T) {
	dir := t.TempDir()
	bus := newLoggedBus(t, dir)

	now := time.Now()
	types := []events.EventType{
		events.EventUserMessage,
		events.EventAssistantMessage,
		events.EventToolCall,
		events.EventTaskChanged,
	}
	for i, et := range types {
		bus.Publish(events.Event{
			ID:        string(rune('a' + i)),
			Type:      et,
			Timestamp: now,
			Source:    events.SourceAssistant,
		})
	}

	path := dayFile(dir, now)
	waitForLines(t, path, len(types))
	assert.Equal(t, len(types), countLines(t, path))
}

func TestEventLogger_DirectoryAutoCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	bus := newLoggedBus(t, dir)

	now := time.Now()
	bus.Publish(events.Event{
		ID:        "evt-auto",
		Type:      events.EventUserMessage,
		Timestamp: now,
		Source:    events.SourceHTTP,
	})

	waitForLines(t, dayFile(dir, now), 1)
}
