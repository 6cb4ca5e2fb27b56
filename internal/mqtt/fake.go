package mqtt

import (
	"sync"
	"time"

	"github.com/rvolkert/keydeck/internal/press"
)

// FakePublisher records published events for tests.
type FakePublisher struct {
	mu           sync.Mutex
	PressEvents  []press.Event
	SystemEvents []SystemEvent
	PublishErr   error
	Closed       bool
}

// NewFakePublisher creates an in-memory publisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishPress(event press.Event, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.PressEvents = append(f.PressEvents, event)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Presses returns a copy of the recorded press events.
func (f *FakePublisher) Presses() []press.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]press.Event, len(f.PressEvents))
	copy(out, f.PressEvents)
	return out
}
