package action

import "fmt"

// Kind identifies one of the idempotent lifecycle operation kinds.
type Kind string

const (
	// KindShutdown stops an instance's runtime environment, children first.
	KindShutdown Kind = "shutdown"

	// KindDeleteChild destroys one direct child and removes it from the table.
	KindDeleteChild Kind = "delete_child"

	// KindDestroy shuts down and erases an instance and its whole subtree.
	KindDestroy Kind = "destroy"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Action identifies one idempotent lifecycle operation targeting an instance.
// Two Action values denote the same unit of work iff they are equal; this
// equality is the deduplication key in a Set.
type Action struct {
	// Kind is the operation kind.
	Kind Kind

	// Child is the target child name. Set only for KindDeleteChild.
	Child string
}

// Shutdown returns the action that stops the instance it is registered on.
func Shutdown() Action {
	return Action{Kind: KindShutdown}
}

// DeleteChild returns the action that deletes the named direct child.
func DeleteChild(child string) Action {
	return Action{Kind: KindDeleteChild, Child: child}
}

// Destroy returns the action that destroys the instance it is registered on.
func Destroy() Action {
	return Action{Kind: KindDestroy}
}

// String returns a human-readable representation of the action.
func (a Action) String() string {
	if a.Kind == KindDeleteChild {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Child)
	}
	return string(a.Kind)
}
