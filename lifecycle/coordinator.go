package lifecycle

import (
	"context"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/instance"
	"github.com/vinayprograms/componentkit/logging"
	"github.com/vinayprograms/componentkit/registry"
)

// Coordinator registers lifecycle actions on instances, deduplicates them,
// schedules their workflows, and reports their completion. One Coordinator
// serves a whole tree; it keeps no per-instance state of its own.
type Coordinator struct {
	log      *logging.Logger
	registry registry.Registry
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for dispatch and completion output.
func WithLogger(log *logging.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithRegistry sets an instance registry. Registered instances are updated
// on stop and deregistered when their destruction completes.
func WithRegistry(r registry.Registry) Option {
	return func(c *Coordinator) {
		c.registry = r
	}
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		log: logging.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterAction registers a lifecycle action on an instance and returns a
// notification for its completion. The instance's declaration is resolved
// first; registration fails if resolution does. Registering an action equal
// to one already outstanding joins the existing work and never runs it
// twice. The workflow, when one is needed, runs on a background goroutine:
// RegisterAction returns without waiting for any part of it.
func (c *Coordinator) RegisterAction(ctx context.Context, inst *instance.Instance, a action.Action) (*action.Notification, error) {
	if err := inst.EnsureResolved(ctx); err != nil {
		return nil, err
	}

	notif, needsDispatch := inst.Actions().Register(a)
	c.log.WithMoniker(inst.Moniker()).ActionRegistered(a.String(), !needsDispatch)
	if needsDispatch {
		c.dispatch(inst, a)
	}
	return notif, nil
}

// ExecuteAction registers an action and waits for it to complete. If ctx is
// done before then, the wait ends but the action runs to completion and can
// be observed again by re-registering it.
func (c *Coordinator) ExecuteAction(ctx context.Context, inst *instance.Instance, a action.Action) error {
	notif, err := c.RegisterAction(ctx, inst, a)
	if err != nil {
		return err
	}
	return notif.Wait(ctx)
}

// FinishAction completes an outstanding action with the given result,
// waking every waiter. Finishing an action that is not outstanding is a
// silent no-op.
func (c *Coordinator) FinishAction(inst *instance.Instance, a action.Action, result error) {
	inst.Actions().Finish(a, result)
}

// recordStopped updates the registry entry for a stopped instance, if the
// instance is registered.
func (c *Coordinator) recordStopped(inst *instance.Instance) {
	if c.registry == nil {
		return
	}
	if _, err := c.registry.Get(inst.Moniker()); err != nil {
		return
	}
	_ = c.registry.Register(registry.InstanceInfo{
		ID:       inst.ID(),
		Moniker:  inst.Moniker(),
		State:    registry.StateStopped,
		Children: inst.NumChildren(),
	})
}

// deregister removes a destroyed instance from the registry.
func (c *Coordinator) deregister(inst *instance.Instance) {
	if c.registry == nil {
		return
	}
	_ = c.registry.Deregister(inst.Moniker())
}
