package registry

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRegistry is an in-memory implementation of Registry.
// Suitable for single-process runtimes and tests.
type MemoryRegistry struct {
	mu        sync.RWMutex
	instances map[string]InstanceInfo
	watchers  []chan Event
	closed    bool
}

// NewMemoryRegistry creates a new in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		instances: make(map[string]InstanceInfo),
	}
}

// Register adds or updates an instance in the registry.
func (r *MemoryRegistry) Register(info InstanceInfo) error {
	if err := ValidateInstanceInfo(info); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	info.UpdatedAt = time.Now()

	_, exists := r.instances[info.Moniker]
	r.instances[info.Moniker] = info

	eventType := EventAdded
	if exists {
		eventType = EventUpdated
	}
	r.notifyWatchers(Event{Type: eventType, Instance: info})

	return nil
}

// Deregister removes an instance from the registry.
func (r *MemoryRegistry) Deregister(moniker string) error {
	if moniker == "" {
		return ErrInvalidMoniker
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	info, exists := r.instances[moniker]
	if !exists {
		return ErrNotFound
	}

	delete(r.instances, moniker)
	r.notifyWatchers(Event{Type: EventRemoved, Instance: info})

	return nil
}

// Get retrieves a specific instance by moniker.
func (r *MemoryRegistry) Get(moniker string) (*InstanceInfo, error) {
	if moniker == "" {
		return nil, ErrInvalidMoniker
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}

	info, exists := r.instances[moniker]
	if !exists {
		return nil, ErrNotFound
	}
	return &info, nil
}

// List returns all instances matching the filter, sorted by moniker.
func (r *MemoryRegistry) List(filter *Filter) ([]InstanceInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}

	var result []InstanceInfo
	for _, info := range r.instances {
		if filter != nil {
			if filter.State != "" && info.State != filter.State {
				continue
			}
			if filter.MonikerPrefix != "" && !strings.HasPrefix(info.Moniker, filter.MonikerPrefix) {
				continue
			}
		}
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Moniker < result[j].Moniker
	})
	return result, nil
}

// Watch returns a channel of registry events and a cancel function.
func (r *MemoryRegistry) Watch() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, 16)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	r.watchers = append(r.watchers, ch)

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, w := range r.watchers {
			if w == ch {
				r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Close releases the registry's resources.
func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	for _, w := range r.watchers {
		close(w)
	}
	r.watchers = nil
	r.instances = nil

	return nil
}

// notifyWatchers sends an event to all watchers without blocking.
// Callers must hold r.mu.
func (r *MemoryRegistry) notifyWatchers(e Event) {
	for _, w := range r.watchers {
		select {
		case w <- e:
		default:
			// Watcher buffer full, drop event
		}
	}
}
