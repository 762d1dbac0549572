package port

import (
	"context"

	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/reconcile"
	"github.com/storeops/opsflow/internal/domain/workflow"
)

// EntityRepository defines persistence operations for WorkflowEntity.
// Create persists every scalar field, the next-contact date included, so
// a scheduled entity never needs a follow-up write.
type EntityRepository interface {
	Create(ctx context.Context, e *entity.WorkflowEntity) error
	GetByID(ctx context.Context, id int64) (*entity.WorkflowEntity, error)
	UpdateStatus(ctx context.Context, id int64, status workflow.Status) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
	List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error)
}

// LineItemRepository defines persistence operations for LineItem children.
// ApplyOps executes a reconciliation result; the caller wraps it in a
// transaction so the three sets land as one logical unit.
type LineItemRepository interface {
	GetByEntityID(ctx context.Context, entityID int64) ([]*entity.LineItem, error)
	CountByEntityID(ctx context.Context, entityID int64) (int, error)
	ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.LineItem]) error
}

// PaymentRepository defines persistence operations for Payment children
type PaymentRepository interface {
	GetByEntityID(ctx context.Context, entityID int64) ([]*entity.Payment, error)
	ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.Payment]) error
}

// HistoryRepository defines persistence operations for the audit trail.
// Append-only: there is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	GetByEntityID(ctx context.Context, entityID int64) ([]*entity.HistoryEntry, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
