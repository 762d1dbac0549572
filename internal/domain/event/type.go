package event

// Type identifies a domain event
type Type string

const (
	// TypeEntityCreated fires after an entity is persisted for the first time
	TypeEntityCreated Type = "entity.created"

	// TypeStatusChanged fires after a successful status transition
	TypeStatusChanged Type = "entity.status_changed"

	// TypeChildrenReconciled fires after child operation sets are applied
	TypeChildrenReconciled Type = "entity.children_reconciled"

	// TypeRolloverCompleted fires after finalize-and-spawn produced a successor
	TypeRolloverCompleted Type = "entity.rollover_completed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}
