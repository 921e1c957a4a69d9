package instance

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/errors"
	"github.com/vinayprograms/componentkit/events"
	"github.com/vinayprograms/componentkit/manifest"
)

// Instance is one vertex of the component tree. It owns its action set, its
// child table, and its execution state, all guarded by a per-instance lock.
// The lifecycle core never holds two instance locks at once: a workflow
// reads or marks the parent's child table, then reaches a child only through
// the child's own registration entry point.
type Instance struct {
	id       string
	moniker  string
	resolver manifest.Resolver
	runner   Runner
	notifier events.Notifier
	actions  *action.Set

	mu        sync.Mutex
	decl      *manifest.Decl
	children  map[string]*childEntry
	execution *Execution
	shutDown  bool
	destroyed bool
}

type childEntry struct {
	inst     *Instance
	deleting bool
}

// Option configures an Instance at construction.
type Option func(*Instance)

// WithResolver sets the manifest resolver.
func WithResolver(r manifest.Resolver) Option {
	return func(i *Instance) {
		i.resolver = r
	}
}

// WithRunner sets the runtime-environment runner.
func WithRunner(r Runner) Option {
	return func(i *Instance) {
		i.runner = r
	}
}

// WithNotifier sets the lifecycle event notifier.
func WithNotifier(n events.Notifier) Option {
	return func(i *Instance) {
		i.notifier = n
	}
}

// WithDecl pre-resolves the instance with the given declaration.
func WithDecl(d *manifest.Decl) Option {
	return func(i *Instance) {
		i.decl = d
	}
}

// New creates an unbound instance with the given moniker. Without options
// the instance uses a NopRunner, discards events, and must be pre-resolved
// via WithDecl or given a resolver before actions can be registered on it.
func New(moniker string, opts ...Option) (*Instance, error) {
	if err := ValidateMoniker(moniker); err != nil {
		return nil, err
	}

	i := &Instance{
		id:       uuid.NewString(),
		moniker:  moniker,
		runner:   NopRunner{},
		notifier: events.Nop{},
		actions:  action.NewSet(),
		children: make(map[string]*childEntry),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// ValidateMoniker checks a moniker: non-empty slash-separated segments.
func ValidateMoniker(moniker string) error {
	if moniker == "" {
		return errors.InvalidMoniker(moniker)
	}
	for _, segment := range strings.Split(moniker, "/") {
		if manifest.ValidateName(segment) != nil {
			return errors.InvalidMoniker(moniker)
		}
	}
	return nil
}

// JoinMoniker appends a child name to a parent moniker.
func JoinMoniker(parent, child string) string {
	return parent + "/" + child
}

// ID returns the instance's unique identifier.
func (i *Instance) ID() string {
	return i.id
}

// Moniker returns the instance's moniker.
func (i *Instance) Moniker() string {
	return i.moniker
}

// Actions returns the instance's action set.
func (i *Instance) Actions() *action.Set {
	return i.actions
}

// EnsureResolved loads the instance's declaration if it is not loaded yet.
// The first successful resolution is cached and emits a resolved event.
func (i *Instance) EnsureResolved(ctx context.Context) error {
	i.mu.Lock()
	if i.decl != nil {
		i.mu.Unlock()
		return nil
	}
	resolver := i.resolver
	i.mu.Unlock()

	if resolver == nil {
		return errors.ResolveFailed(i.moniker, manifest.ErrNotFound)
	}

	decl, err := resolver.Resolve(ctx, i.moniker)
	if err != nil {
		return errors.ResolveFailed(i.moniker, err)
	}

	i.mu.Lock()
	first := i.decl == nil
	if first {
		i.decl = decl
	}
	i.mu.Unlock()

	if first {
		i.notifier.Publish(events.Resolved(i.moniker))
	}
	return nil
}

// Decl returns the resolved declaration, or nil if not resolved yet.
func (i *Instance) Decl() *manifest.Decl {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.decl
}

// --- Child table ---

// AddChild binds a child into the table under the given name.
func (i *Instance) AddChild(name string, child *Instance) error {
	if err := manifest.ValidateName(name); err != nil {
		return errors.InvalidMoniker(name)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return errors.FromCode(errors.ErrCodeInstanceDestroyed, errors.WithMoniker(i.moniker))
	}
	if _, exists := i.children[name]; exists {
		return errors.FromCode(errors.ErrCodeAlreadyExists,
			errors.WithMoniker(i.moniker), errors.WithMetadata("child", name))
	}

	i.children[name] = &childEntry{inst: child}
	return nil
}

// Child returns the named child, live or deleting.
func (i *Instance) Child(name string) (*Instance, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	entry, ok := i.children[name]
	if !ok {
		return nil, false
	}
	return entry.inst, true
}

// LiveChildren returns a snapshot of children not marked deleting. Callers
// recurse over the snapshot, so table mutation during recursion cannot
// invalidate an in-progress traversal.
func (i *Instance) LiveChildren() map[string]*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make(map[string]*Instance)
	for name, entry := range i.children {
		if !entry.deleting {
			out[name] = entry.inst
		}
	}
	return out
}

// AllChildren returns a snapshot of all children, live and deleting.
func (i *Instance) AllChildren() map[string]*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make(map[string]*Instance, len(i.children))
	for name, entry := range i.children {
		out[name] = entry.inst
	}
	return out
}

// MarkDeleting marks the named child as deleting, excluding it from future
// live-children sweeps, and returns its handle. Returns false if absent.
func (i *Instance) MarkDeleting(name string) (*Instance, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, ok := i.children[name]
	if !ok {
		return nil, false
	}
	entry.deleting = true
	return entry.inst, true
}

// MarkAllDeleting marks every live child as deleting and returns a snapshot
// of all children, including those already deleting.
func (i *Instance) MarkAllDeleting() map[string]*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make(map[string]*Instance, len(i.children))
	for name, entry := range i.children {
		entry.deleting = true
		out[name] = entry.inst
	}
	return out
}

// IsDeleting reports whether the named child is marked deleting.
func (i *Instance) IsDeleting(name string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	entry, ok := i.children[name]
	return ok && entry.deleting
}

// RemoveChild removes the named child from the table and emits a
// child-deleted event. Removing an absent child is a no-op.
func (i *Instance) RemoveChild(name string) {
	i.mu.Lock()
	_, ok := i.children[name]
	if ok {
		delete(i.children, name)
	}
	i.mu.Unlock()

	if ok {
		i.notifier.Publish(events.ChildDeleted(i.moniker, name))
	}
}

// NumChildren returns the number of children, live and deleting.
func (i *Instance) NumChildren() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.children)
}

// --- Execution state ---

// Bind starts the instance's runtime environment if it is not running.
func (i *Instance) Bind(ctx context.Context) error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return errors.FromCode(errors.ErrCodeInstanceDestroyed, errors.WithMoniker(i.moniker))
	}
	if i.execution != nil {
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()

	exec, err := i.runner.Start(ctx, i)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodeStartFailed,
			"failed to start "+i.moniker, errors.WithMoniker(i.moniker))
	}

	i.mu.Lock()
	i.execution = exec
	i.shutDown = false
	i.mu.Unlock()

	i.notifier.Publish(events.Started(i.moniker))
	return nil
}

// Stop stops the instance's runtime environment and marks the instance shut
// down. On success a stopped event is emitted; on failure the instance's
// state is left unchanged so the action can be re-registered.
func (i *Instance) Stop(ctx context.Context) error {
	if err := i.runner.Stop(ctx, i); err != nil {
		return errors.StopFailed(i.moniker, err)
	}

	i.mu.Lock()
	i.execution = nil
	i.shutDown = true
	i.mu.Unlock()

	i.notifier.Publish(events.Stopped(i.moniker))
	return nil
}

// DestroyResources erases the instance's resources and marks it destroyed.
// Called by the destroy workflow only after the instance has shut down and
// its children are gone.
func (i *Instance) DestroyResources(ctx context.Context) error {
	if err := i.runner.DestroyResources(ctx, i); err != nil {
		return errors.DestroyFailed(i.moniker, err)
	}

	i.mu.Lock()
	i.destroyed = true
	i.mu.Unlock()

	i.notifier.Publish(events.Destroyed(i.moniker))
	return nil
}

// IsShutDown reports whether the instance has been shut down.
func (i *Instance) IsShutDown() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.shutDown
}

// HasExecution reports whether the runtime environment is currently started.
func (i *Instance) HasExecution() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.execution != nil
}

// IsDestroyed reports whether the instance's resources have been erased.
func (i *Instance) IsDestroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}
