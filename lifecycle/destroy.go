package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/errors"
	"github.com/vinayprograms/componentkit/instance"
)

// doDestroy erases an instance and its whole subtree. The instance is shut
// down first, then every child is destroyed and removed, and only once the
// table is empty are the instance's own resources erased. A failure at any
// stage leaves the remaining state in place for inspection and retry.
func (c *Coordinator) doDestroy(ctx context.Context, inst *instance.Instance) error {
	if err := c.ExecuteAction(ctx, inst, action.Shutdown()); err != nil {
		return err
	}

	children := inst.MarkAllDeleting()

	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make([]error, 0, len(children))
	for name, child := range children {
		wg.Add(1)
		go func(name string, child *instance.Instance) {
			defer wg.Done()
			err := c.ExecuteAction(ctx, child, action.Destroy())
			if err == nil {
				inst.RemoveChild(name)
				c.log.WithMoniker(inst.Moniker()).ChildDeleted(name)
			}
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(name, child)
	}
	wg.Wait()

	if err := errors.FirstError(errs); err != nil {
		return err
	}

	start := time.Now()
	if err := inst.DestroyResources(ctx); err != nil {
		return err
	}
	c.log.WithMoniker(inst.Moniker()).InstanceDestroyed(time.Since(start))
	c.deregister(inst)
	return nil
}
