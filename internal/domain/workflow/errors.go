package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not declared
	// for the entity's kind, or the current status is terminal
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a declared workflow status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownKind is returned when no transition table exists for a kind
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrGuardFailed is returned when a transition's guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")
)
