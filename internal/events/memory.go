package events

import (
	"context"
	"sync"
)

// Recorder collects published events in memory. Tests use it to assert
// which events a mutation produced.
type Recorder struct {
	mu     sync.Mutex
	events []AvailabilityChanged
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event AvailabilityChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []AvailabilityChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AvailabilityChanged, len(r.events))
	copy(out, r.events)
	return out
}
