package workflow

import (
	"context"

	"github.com/storeops/opsflow/internal/domain/entity"
	domainwf "github.com/storeops/opsflow/internal/domain/workflow"
)

// Engine validates and executes status transitions, persisting the new
// status together with its audit trail entry in one transaction.
type Engine interface {
	// Transition moves the entity to the requested status. On success the
	// returned entity carries the new status, a fresh updatedAt and the
	// appended history entry. On failure the entity is left untouched.
	Transition(ctx context.Context, entityID int64, to domainwf.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error)

	// PermittedTargets returns the statuses reachable from the entity's
	// current status
	PermittedTargets(ctx context.Context, entityID int64) ([]domainwf.Status, error)
}
