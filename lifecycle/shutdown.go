package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/errors"
	"github.com/vinayprograms/componentkit/instance"
)

// doShutdown shuts down every live child, then stops the instance's own
// runtime environment. Children stop before the parent so that a child
// never outlives the environment it depends on. Siblings shut down
// concurrently; a child failure skips the parent's own stop and becomes the
// action's result.
func (c *Coordinator) doShutdown(ctx context.Context, inst *instance.Instance) error {
	children := inst.LiveChildren()

	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, 0, len(children))
	for _, child := range children {
		wg.Add(1)
		go func(child *instance.Instance) {
			defer wg.Done()
			err := c.ExecuteAction(ctx, child, action.Shutdown())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(child)
	}
	wg.Wait()

	if err := errors.FirstError(errs); err != nil {
		return err
	}

	start := time.Now()
	if err := inst.Stop(ctx); err != nil {
		return err
	}
	c.log.WithMoniker(inst.Moniker()).InstanceStopped(time.Since(start))
	c.recordStopped(inst)
	return nil
}
