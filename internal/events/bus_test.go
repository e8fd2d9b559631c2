package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventUserMessage)

	bus.Publish(NewTypedEvent(SourceCLI, UserMessagePayload{Content: "hello"}))
	bus.Publish(NewTypedEvent(SourceTasks, TaskChangedPayload{Action: TaskAdded, TaskID: 1}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventUserMessage {
		t.Errorf("expected user.message, got %s", received[0].Type)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewTypedEvent(SourceCLI, UserMessagePayload{Content: "hello"}))
	bus.Publish(NewTypedEvent(SourceTasks, TaskChangedPayload{Action: TaskDeleted, TaskID: 2}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Add(NewEvent(EventUserMessage, SourceCLI, map[string]any{"i": i}))
	}

	events := rb.Get(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// oldest retained is i=2
	if got := events[0].Payload["i"]; got != 2 {
		t.Errorf("expected oldest retained i=2, got %v", got)
	}
}

func TestSubscribeChan(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(8, EventUserMessage)
	defer unsub()

	bus.Publish(NewTypedEvent(SourceCLI, UserMessagePayload{Content: "hello"}))

	select {
	case e := <-ch:
		if e.Type != EventUserMessage {
			t.Errorf("expected user.message, got %s", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSubscribeChan_UnsubscribeTwice(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(1)
	unsub()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewBus(8)
	bus.Close()

	// must not panic
	bus.Publish(NewEvent(EventUserMessage, SourceCLI, nil))
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus
	bus.Publish(NewEvent(EventUserMessage, SourceCLI, nil))
}

func TestHistory(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	for i := 0; i < 3; i++ {
		bus.Publish(NewEvent(EventUserMessage, SourceCLI, map[string]any{"i": i}))
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(time.Second)
	for len(bus.History(10)) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := len(bus.History(10)); got != 3 {
		t.Fatalf("expected 3 events in history, got %d", got)
	}
	if got := len(bus.History(2)); got != 2 {
		t.Errorf("expected limit to cap history at 2, got %d", got)
	}
}
