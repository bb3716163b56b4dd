package testutil

import (
	"sync"

	"github.com/roach88/authflow/internal/engine"
)

// Recorder is an engine.Dispatcher that keeps every event it is sent, for
// running a single action outside an engine.
//
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []engine.Event
}

var _ engine.Dispatcher = (*Recorder)(nil)

// Send records ev and always accepts it.
func (r *Recorder) Send(ev engine.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

// Events returns a copy of the recorded events in send order.
func (r *Recorder) Events() []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.Event(nil), r.events...)
}

// Types returns the Type() of every recorded event in send order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.Type()
	}
	return types
}

// Last returns the most recent event, or nil.
func (r *Recorder) Last() engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}
