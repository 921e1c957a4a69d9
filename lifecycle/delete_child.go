package lifecycle

import (
	"context"

	"github.com/vinayprograms/componentkit/action"
	"github.com/vinayprograms/componentkit/instance"
)

// doDeleteChild destroys the named child and removes it from the parent's
// table. The child is marked deleting first so that a concurrent shutdown
// sweep of the parent no longer visits it.
func (c *Coordinator) doDeleteChild(ctx context.Context, inst *instance.Instance, name string) error {
	child, ok := inst.MarkDeleting(name)
	if !ok {
		// Removed between dispatch and here by another completed delete.
		return nil
	}

	if err := c.ExecuteAction(ctx, child, action.Destroy()); err != nil {
		// The child stays in the table, still marked deleting, so its
		// remains can be inspected and the delete re-registered.
		return err
	}

	inst.RemoveChild(name)
	c.log.WithMoniker(inst.Moniker()).ChildDeleted(name)
	return nil
}
