// Package testbus runs a real EventBus that records everything published on it.
package testbus

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/handsandhope/hope/internal/core/eventbus"
)

const settle = 500 * time.Millisecond

// RecordedEvent is one delivered event.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus is a started EventBus plus a log of delivered events.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	events []RecordedEvent
}

// New starts a bus that lives until the test ends.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New(64)}
	tb.SubscribeAll(func(e eventbus.Event, p any) {
		tb.mu.Lock()
		tb.events = append(tb.events, RecordedEvent{Event: e, Payload: p})
		tb.mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go tb.Start(ctx)

	return tb
}

// Events returns the delivered events in order.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.events)
}

func (tb *Bus) has(event eventbus.Event) bool {
	return slices.ContainsFunc(tb.Events(), func(r RecordedEvent) bool { return r.Event == event })
}

// WaitFor polls until event has been delivered or timeout passes.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !tb.has(event) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
	return true
}

// AssertPublished fails t unless event is delivered shortly.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, settle) {
		t.Errorf("event %q was not published", event)
	}
}

// AssertNotPublished waits for wait and fails t if event was delivered.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.has(event) {
		t.Errorf("event %q was published", event)
	}
}

// Last waits for an event whose payload is a T and returns the most recent one.
func Last[T any](t *testing.T, tb *Bus) T {
	t.Helper()

	var (
		last  T
		found bool
	)
	deadline := time.Now().Add(settle)
	for !found && time.Now().Before(deadline) {
		for _, r := range tb.Events() {
			if p, ok := r.Payload.(T); ok {
				last, found = p, true
			}
		}
		if !found {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if !found {
		var zero T
		t.Fatalf("no %T payload published", zero)
	}
	return last
}
