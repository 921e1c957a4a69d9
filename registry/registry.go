// Package registry provides a live-instance registry for the component
// runtime. Binders register instances as they join the tree; the lifecycle
// coordinator deregisters them when their destruction completes. Operators
// discover what is running through List and Watch.
package registry

import (
	"errors"
	"time"
)

// Common errors.
var (
	ErrNotFound       = errors.New("instance not found")
	ErrClosed         = errors.New("registry closed")
	ErrInvalidMoniker = errors.New("invalid moniker")
)

// State represents an instance's registered lifecycle state.
type State string

const (
	StateResolved State = "resolved"
	StateRunning  State = "running"
	StateStopped  State = "stopped"
)

// InstanceInfo contains registration information for one instance.
type InstanceInfo struct {
	// ID is the instance's unique identifier.
	ID string

	// Moniker is the instance's path in the tree; the registry key.
	Moniker string

	// State is the instance's registered lifecycle state.
	State State

	// Children is the number of children in the instance's table.
	Children int

	// Metadata contains additional key-value pairs.
	Metadata map[string]string

	// UpdatedAt is when the registration was last written.
	UpdatedAt time.Time
}

// Filter specifies criteria for listing instances.
type Filter struct {
	// State filters by lifecycle state. Empty means all.
	State State

	// MonikerPrefix filters to instances under this moniker. Empty means all.
	MonikerPrefix string
}

// EventType represents the type of registry event.
type EventType string

const (
	EventAdded   EventType = "added"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
)

// Event represents a change in the registry.
type Event struct {
	// Type indicates what happened.
	Type EventType

	// Instance contains the instance information.
	// For removal events, this contains the last known state.
	Instance InstanceInfo
}

// Registry tracks the instances currently bound into the tree.
type Registry interface {
	// Register adds or updates an instance in the registry.
	// If an instance with the same moniker exists, it updates the entry.
	Register(info InstanceInfo) error

	// Deregister removes an instance from the registry.
	// Removing an absent moniker returns ErrNotFound.
	Deregister(moniker string) error

	// Get retrieves a specific instance by moniker.
	Get(moniker string) (*InstanceInfo, error)

	// List returns all instances matching the filter.
	// A nil filter returns everything.
	List(filter *Filter) ([]InstanceInfo, error)

	// Watch returns a channel of registry events and a cancel function.
	// The channel is closed when the registry closes or cancel is called.
	Watch() (<-chan Event, func())

	// Close releases the registry's resources.
	Close() error
}

// ValidateInstanceInfo checks a registration for required fields.
func ValidateInstanceInfo(info InstanceInfo) error {
	if info.Moniker == "" {
		return ErrInvalidMoniker
	}
	return nil
}
