// Package lifecycle coordinates the idempotent teardown actions of a
// component tree: shutdown, child deletion, and destruction.
//
// Architecture:
//
//	                 ┌─────────────────────────────┐
//	 RegisterAction  │         Coordinator         │
//	────────────────▶│                             │
//	                 │  resolve ── register ── ?   │
//	                 └──────────────┬──────────────┘
//	                    fresh entry │ joined an outstanding
//	                                ▼ action: reuse its
//	                 ┌──────────────────────────┐ notification
//	                 │         dispatch         │
//	                 │  fast path: finish now   │
//	                 │  otherwise: spawn        │
//	                 └──────────────┬───────────┘
//	                                ▼ background goroutine
//	                 ┌──────────────────────────┐
//	                 │  doShutdown / doDestroy  │
//	                 │  / doDeleteChild         │
//	                 │  recurse via             │
//	                 │  ExecuteAction on        │
//	                 │  children                │
//	                 └──────────────┬───────────┘
//	                                ▼
//	                        FinishAction
//	                 (remove from set, wake waiters)
//
// Every action registered on an instance is deduplicated against the
// instance's outstanding set: registering an action equal to one still in
// flight joins it instead of running it again. Workflows recurse through
// the same registration entry point, so a parent's shutdown and an
// operator's direct shutdown of a child coalesce into one unit of work.
//
// Ordering guarantees, all enforced by workflow structure rather than
// locks:
//
//   - Shutdown stops every live child before stopping the instance itself.
//   - Destroy shuts the instance down before destroying any child, and
//     destroys every child before erasing the instance's own resources.
//   - Siblings shut down and destroy concurrently.
//
// Failures propagate upward as the action's result: the first error among
// an instance's children becomes the parent action's error, and the
// parent's own stop or erase step is skipped. State that failed to tear
// down stays in place so the action can be registered again.
package lifecycle
