// Package action provides the deduplication and completion-notification
// primitives of the lifecycle coordinator.
//
// # Overview
//
// Lifecycle operations (shutdown, delete child, destroy) are long-running,
// asynchronous, and idempotent. Any number of callers may ask for the same
// operation on the same instance concurrently; exactly one unit of work must
// run, and every caller must observe its completion. This package supplies
// the pieces that make that true:
//
//   - Action: a comparable value identifying one operation. Structural
//     equality is the dedup key.
//   - Status: a shared single-result completion cell.
//   - Notification: a waitable handle over a Status.
//   - Set: the per-instance map of outstanding actions to their statuses.
//
// # Architecture
//
//	caller A ── Register(Destroy) ──▶ ┌───────────────┐ ──▶ Notification A ─┐
//	                                  │  Set           │                     ├─▶ same Status
//	caller B ── Register(Destroy) ──▶ │  (one entry)   │ ──▶ Notification B ─┘
//	                                  └───────────────┘
//	                 workflow ──────── Finish(Destroy, result) ──▶ wakes A and B
//
// # Usage
//
//	set := action.NewSet()
//
//	notif, needsDispatch := set.Register(action.Destroy())
//	if needsDispatch {
//	    go func() {
//	        set.Finish(action.Destroy(), runDestroy())
//	    }()
//	}
//
//	if err := notif.Wait(ctx); err != nil {
//	    // first failure from the destroyed subtree
//	}
//
// Waking is channel-based: the Status closes a channel exactly once when
// finished, so every concurrent waiter is resumed and a notification that
// was never waited on before completion still resolves on its first wait.
package action
