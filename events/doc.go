// Package events defines the lifecycle events emitted as the component tree
// changes, and the notifiers that deliver them to observers.
//
// # Overview
//
// The lifecycle coordinator's work is observable through a stream of typed
// events: an instance resolves, starts, stops, is destroyed, or loses a
// child. Events are published synchronously at the point the transition
// completes, so their order carries the coordinator's guarantees: for a
// shutdown, every descendant's "stopped" event precedes its ancestor's; for
// a destroy, all "stopped" events precede all "destroyed" events in the
// affected subtree.
//
// # Notifiers
//
//   - Recorder: in-memory, ordered; for tests and diagnostics.
//   - BusNotifier: JSON over a bus.MessageBus subject per event type; use
//     with bus.NATSBus for out-of-process observers.
//   - Multi: fan-out to several notifiers.
//   - Nop: discard.
//
// # Usage
//
//	rec := events.NewRecorder()
//	busN := events.NewBusNotifier(natsBus, "")
//	notifier := events.Multi{rec, busN}
//
//	// ... wire notifier into instance construction ...
//
//	for _, e := range rec.OfType(events.TypeStopped) {
//	    fmt.Println(e.Moniker)
//	}
package events
