package lifecycle

import (
	"context"
	"time"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/errors"
	"github.com/vinayprograms/componentkit/instance"
)

// dispatch decides how a freshly registered action runs: finished
// immediately as a no-op, or handed to a background workflow. It never runs
// a workflow inline, so the registering goroutine is never blocked on lock
// acquisitions further down the tree.
func (c *Coordinator) dispatch(inst *instance.Instance, a action.Action) {
	switch a.Kind {
	case action.KindShutdown:
		// An instance that is already shut down with nothing executing has
		// no work to do.
		if inst.IsShutDown() && !inst.HasExecution() {
			c.FinishAction(inst, a, nil)
			return
		}
		c.spawn(inst, a, c.doShutdown)

	case action.KindDeleteChild:
		// A child that is already gone was deleted by a prior, completed
		// operation; deleting it again is an idempotent no-op.
		if _, ok := inst.Child(a.Child); !ok {
			c.FinishAction(inst, a, nil)
			return
		}
		child := a.Child
		c.spawn(inst, a, func(ctx context.Context, inst *instance.Instance) error {
			return c.doDeleteChild(ctx, inst, child)
		})

	case action.KindDestroy:
		// No fast path: re-running destroy against an already-empty,
		// already-shut-down instance is safe.
		c.spawn(inst, a, c.doDestroy)

	default:
		c.FinishAction(inst, a, errors.Internal("unknown action kind "+a.Kind.String()))
	}
}

// spawn runs a workflow on a fresh goroutine and finishes the action with
// its result. The workflow gets a background context: once dispatched, an
// action is not cancellable and always runs to completion.
func (c *Coordinator) spawn(inst *instance.Instance, a action.Action, workflow func(context.Context, *instance.Instance) error) {
	c.log.WithMoniker(inst.Moniker()).ActionDispatched(a.String())
	start := time.Now()

	go func() {
		err := workflow(context.Background(), inst)
		c.FinishAction(inst, a, err)
		c.log.WithMoniker(inst.Moniker()).ActionFinished(a.String(), time.Since(start), err)
	}()
}
