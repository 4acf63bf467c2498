package port

import (
	"log"
	"sync"
)

// Recorder is an EventSink that keeps every event it sees, for
// assertions in tests (e.g. that a retry success logged exactly one
// DISK_201).
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) LogEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of every event logged so far, in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many times event was logged.
func (r *Recorder) Count(event Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// StdDebugSink adapts the standard library's *log.Logger to DebugSink,
// the same way the teacher's cmd/main.go reaches for "log" rather than
// a third-party structured logger for free-form text output.
type StdDebugSink struct {
	*log.Logger
}

func NewStdDebugSink(logger *log.Logger) StdDebugSink {
	return StdDebugSink{Logger: logger}
}
