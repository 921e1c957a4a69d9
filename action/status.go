package action

import (
	"context"
	"sync"
)

// Status is the shared completion cell for one outstanding action. Every
// Notification issued for the same action holds the same Status; the result
// is stored exactly once and the done channel closed exactly once, so all
// waiters observe the same outcome regardless of when they start waiting.
type Status struct {
	mu       sync.Mutex
	finished bool
	result   error
	done     chan struct{}
}

// NewStatus creates a pending completion cell.
func NewStatus() *Status {
	return &Status{done: make(chan struct{})}
}

// finish stores the terminal result and wakes all waiters. Returns false if
// the status was already finished; the first result wins.
func (s *Status) finish(result error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return false
	}
	s.result = result
	s.finished = true
	close(s.done)
	return true
}

// Notification is a caller-visible handle over a Status. Waiting blocks the
// calling goroutine until the action completes, then yields the stored
// result. A Notification may be waited on any number of times by any number
// of goroutines; one that is never waited on before completion still
// resolves correctly afterward.
type Notification struct {
	status *Status
}

// Wait blocks until the action completes or ctx is done. Cancellation stops
// the wait only; the underlying action keeps running to completion.
func (n *Notification) Wait(ctx context.Context) error {
	select {
	case <-n.status.done:
		// result is written before done is closed
		return n.status.result
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when the action completes.
func (n *Notification) Done() <-chan struct{} {
	return n.status.done
}

// Result returns the stored result and whether the action has completed.
// It never blocks.
func (n *Notification) Result() (error, bool) {
	select {
	case <-n.status.done:
		return n.status.result, true
	default:
		return nil, false
	}
}
