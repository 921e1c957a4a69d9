package action

import "sync"

// Set is a per-instance collection of outstanding lifecycle actions. An
// action is present in the set iff work for it is outstanding: an entry is
// created on the first Register of a given Action and removed at Finish.
// Between those points every Register of an equal Action returns a new
// Notification over the same shared Status and triggers no new work.
type Set struct {
	mu      sync.Mutex
	entries map[Action]*Status
}

// NewSet creates an empty action set.
func NewSet() *Set {
	return &Set{entries: make(map[Action]*Status)}
}

// Has reports whether work for the action is outstanding.
func (s *Set) Has(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[a]
	return ok
}

// Len returns the number of outstanding actions.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Register adds the action to the set, or joins the existing entry if equal
// work is already outstanding. The returned Notification resolves when the
// action finishes. needsDispatch is true only for the first registration;
// the caller must then schedule the workflow and eventually call Finish.
// Register never performs the work itself.
func (s *Set) Register(a Action) (n *Notification, needsDispatch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.entries[a]
	if !ok {
		status = NewStatus()
		s.entries[a] = status
		needsDispatch = true
	}
	return &Notification{status: status}, needsDispatch
}

// Finish removes the action from the set and completes its shared status
// with the given result, waking every waiter. Finishing an action that is
// not registered (for example, one that was already finished) is a silent
// no-op. The result is visible to notifications that have never been waited
// on; there are no missed wakeups.
func (s *Set) Finish(a Action, result error) {
	s.mu.Lock()
	status, ok := s.entries[a]
	if ok {
		delete(s.entries, a)
	}
	s.mu.Unlock()

	if ok {
		status.finish(result)
	}
}
