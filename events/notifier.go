package events

import (
	"sync"

	"github.com/vinayprograms/componentkit/bus"
)

// Notifier receives lifecycle events as they happen. Publish is called
// synchronously from lifecycle workflows, so the relative order of calls
// reflects the coordinator's ordering guarantees (children before parents,
// stop before destroy). Implementations must not block for long.
type Notifier interface {
	Publish(e Event)
}

// NotifierFunc is a convenience type for simple notifier functions.
type NotifierFunc func(e Event)

// Publish implements Notifier.
func (f NotifierFunc) Publish(e Event) {
	f(e)
}

// Nop is a Notifier that discards all events.
type Nop struct{}

// Publish implements Notifier.
func (Nop) Publish(Event) {}

// Recorder is a Notifier that stores events in order. Intended for tests
// and diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements Notifier.
func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a snapshot of all recorded events in publication order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of one type, in publication order.
func (r *Recorder) OfType(t Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans one event out to several notifiers in order.
type Multi []Notifier

// Publish implements Notifier.
func (m Multi) Publish(e Event) {
	for _, n := range m {
		n.Publish(e)
	}
}

// BusNotifier publishes events as JSON over a message bus, one subject per
// event type, enabling distributed observers.
type BusNotifier struct {
	bus    bus.MessageBus
	prefix string
}

// NewBusNotifier creates a bus-backed notifier. An empty prefix uses
// SubjectPrefix.
func NewBusNotifier(mb bus.MessageBus, prefix string) *BusNotifier {
	if prefix == "" {
		prefix = SubjectPrefix
	}
	return &BusNotifier{bus: mb, prefix: prefix}
}

// Publish implements Notifier. Marshaling or publication failures are
// dropped: event delivery is best-effort and must never fail a lifecycle
// workflow.
func (n *BusNotifier) Publish(e Event) {
	data, err := e.Marshal()
	if err != nil {
		return
	}
	_ = n.bus.Publish(e.Subject(n.prefix), data)
}
