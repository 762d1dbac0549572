package workflow

import "context"

// StateMachine tracks an entity's current status and validates requested changes.
// Unlike trigger-driven machines, callers request the target status directly:
// the dashboard's edit forms submit the desired status, not an event name.
type StateMachine interface {
	// Status returns the current status
	Status() Status

	// CanMove returns true if a move to the target status is declared
	CanMove(to Status) bool

	// Move attempts to change to the target status, failing if the move
	// is not declared for the current status or its guard rejects it
	Move(ctx context.Context, to Status) error

	// PermittedTargets returns all statuses reachable from the current one
	PermittedTargets() []Status
}
