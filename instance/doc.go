// Package instance provides the component-instance node of the runtime
// tree: the child table, the execution handle, and the per-instance action
// set the lifecycle coordinator operates on.
//
// # Overview
//
// An Instance is created by whoever assembles the tree (a resolver/binder,
// or test code), given a moniker and hooks:
//
//   - a manifest.Resolver that loads its declaration
//   - a Runner that starts, stops, and erases its runtime environment
//   - an events.Notifier that observes its lifecycle transitions
//
// Each instance guards its own state with one lock. Child queries return
// snapshots, never live references into the table, so a workflow can walk
// the tree while the table changes underneath it. A child entry is either
// live or marked deleting; deleting children are excluded from shutdown and
// destroy sweeps because their destruction is already underway, and an
// entry leaves the table only when its destruction has completed.
//
// # Usage
//
//	parent, _ := instance.New("core",
//	    instance.WithDecl(&manifest.Decl{Name: "core"}),
//	    instance.WithRunner(runner),
//	    instance.WithNotifier(recorder),
//	)
//	child, _ := instance.New(instance.JoinMoniker("core", "net"),
//	    instance.WithDecl(&manifest.Decl{Name: "net"}))
//	_ = parent.AddChild("net", child)
//	_ = child.Bind(ctx)
//
// Lifecycle transitions (Stop, DestroyResources) are invoked by the
// lifecycle coordinator's workflows, not directly by callers.
package instance
