// Package errors provides a structured error taxonomy for componentkit
// lifecycle operations. It defines the codes and categories that callers of
// the lifecycle coordinator use to decide whether a failed action is worth
// re-registering.
//
// # Error Categories
//
// Errors are classified into three categories:
//
//   - Transient: Temporary failures where retry may succeed (backend timeouts, etc.)
//   - Permanent: Failures where retry will not help (invalid moniker, resolve failure, etc.)
//   - Internal: Unexpected errors indicating bugs or system failures
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - RESOLVE_FAILED: Manifest resolution failed
//   - STOP_FAILED: Runtime environment failed to stop
//   - DESTROY_FAILED: Resource erasure failed
//   - CHILD_NOT_FOUND: No such child in the table
//   - And more...
//
// Note that the lifecycle coordinator never surfaces CHILD_NOT_FOUND from
// DeleteChild: deleting an absent child is an idempotent no-op that finishes
// with success. The code exists for query interfaces.
//
// # Usage
//
// Create a new error:
//
//	err := errors.StopFailed("core/net/driver", cause)
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "shutting down subtree")
//
// Check a failure kind:
//
//	if errors.Is(err, errors.ErrCodeDestroyFailed) {
//	    // leave the child marked deleting, inspect, re-register
//	}
//
// # JSON Serialization
//
// Errors support JSON serialization so lifecycle event observers can carry
// failures across process boundaries:
//
//	data, err := json.Marshal(lcErr)
package errors
