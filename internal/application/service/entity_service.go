package service

import (
	"context"
	"fmt"
	"time"

	"github.com/storeops/opsflow/internal/application/dispatcher"
	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/event"
	"github.com/storeops/opsflow/internal/domain/reconcile"
	"github.com/storeops/opsflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CreateEntityRequest carries the fields needed to register a new entity.
// NextContactAt, when set, is persisted in the same transaction as the
// entity itself.
type CreateEntityRequest struct {
	Kind          workflow.Kind
	CustomerRef   string
	Motive        string
	Notes         string
	NextContactAt *time.Time
	Actor         entity.Actor
}

// UpdateEntityRequest carries a wholesale edit: scalar fields plus the
// full submitted child collections. Nil collections mean "not submitted";
// an empty non-nil collection deletes every persisted child of that type.
type UpdateEntityRequest struct {
	ID        int64
	Notes     *string
	LineItems []*entity.LineItem
	Payments  []*entity.Payment
}

// EntityService manages workflow entities and their child collections
type EntityService interface {
	Create(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error)
	Get(ctx context.Context, id int64) (*entity.WorkflowEntity, error)
	List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error)
	Update(ctx context.Context, req UpdateEntityRequest) (*entity.WorkflowEntity, error)
}

type entityServiceImpl struct {
	entityRepo  port.EntityRepository
	itemRepo    port.LineItemRepository
	paymentRepo port.PaymentRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	dispatcher  dispatcher.Dispatcher
	logger      Logger
}

// NewEntityService creates a new EntityService
func NewEntityService(
	entityRepo port.EntityRepository,
	itemRepo port.LineItemRepository,
	paymentRepo port.PaymentRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	disp dispatcher.Dispatcher,
	logger Logger,
) EntityService {
	return &entityServiceImpl{
		entityRepo:  entityRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		dispatcher:  disp,
		logger:      logger,
	}
}

// Create registers a new entity in its kind's initial status and writes
// the creation entry to the audit trail.
func (s *entityServiceImpl) Create(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
	initial, err := workflow.InitialStatus(req.Kind)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ent := &entity.WorkflowEntity{
		Kind:          req.Kind,
		Status:        initial,
		CustomerRef:   req.CustomerRef,
		Motive:        req.Motive,
		Notes:         req.Notes,
		NextContactAt: req.NextContactAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entityRepo.Create(txCtx, ent); err != nil {
			return fmt.Errorf("create entity: %w", err)
		}

		entry := &entity.HistoryEntry{
			EntityID:    ent.ID,
			ActorID:     req.Actor.ID,
			ActorName:   req.Actor.Name,
			Description: fmt.Sprintf("Registered %s", req.Kind),
			Status:      initial,
			Timestamp:   ent.CreatedAt,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		ent.AppendHistory(entry)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create entity", "error", err, "kind", req.Kind)
		return nil, err
	}

	s.logger.Info("Entity created", "id", ent.ID, "kind", req.Kind, "status", initial)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeEntityCreated, ent.ID, map[string]interface{}{
			"kind":   req.Kind.String(),
			"status": initial.String(),
		}))
	}

	return ent, nil
}

// Get loads an entity together with its children and audit trail
func (s *entityServiceImpl) Get(ctx context.Context, id int64) (*entity.WorkflowEntity, error) {
	ent, err := s.entityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, fmt.Errorf("entity %d: %w", id, port.ErrNotFound)
	}

	if ent.LineItems, err = s.itemRepo.GetByEntityID(ctx, id); err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	if ent.Payments, err = s.paymentRepo.GetByEntityID(ctx, id); err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if ent.History, err = s.historyRepo.GetByEntityID(ctx, id); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return ent, nil
}

// List retrieves a page of entities of one kind
func (s *entityServiceImpl) List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error) {
	entities, err := s.entityRepo.List(ctx, kind, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list entities", "error", err, "kind", kind)
		return nil, err
	}
	return entities, nil
}

// Update applies a wholesale edit: scalar fields and reconciled child
// collections land in one transaction, so either every operation set is
// applied or none is. Plain field and child edits do not generate
// history; only status transitions are audited.
func (s *entityServiceImpl) Update(ctx context.Context, req UpdateEntityRequest) (*entity.WorkflowEntity, error) {
	ent, err := s.entityRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, fmt.Errorf("entity %d: %w", req.ID, port.ErrNotFound)
	}

	var itemOps *reconcile.Ops[*entity.LineItem]
	if req.LineItems != nil {
		persisted, err := s.itemRepo.GetByEntityID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("load line items: %w", err)
		}
		if itemOps, err = reconcile.Reconcile(persisted, req.LineItems); err != nil {
			return nil, err
		}
	}

	var paymentOps *reconcile.Ops[*entity.Payment]
	if req.Payments != nil {
		persisted, err := s.paymentRepo.GetByEntityID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("load payments: %w", err)
		}
		if paymentOps, err = reconcile.Reconcile(persisted, req.Payments); err != nil {
			return nil, err
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if req.Notes != nil {
			if err := s.entityRepo.UpdateNotes(txCtx, req.ID, *req.Notes); err != nil {
				return fmt.Errorf("update notes: %w", err)
			}
		}
		if itemOps != nil {
			if err := s.itemRepo.ApplyOps(txCtx, req.ID, itemOps); err != nil {
				return fmt.Errorf("apply line item ops: %w", err)
			}
		}
		if paymentOps != nil {
			if err := s.paymentRepo.ApplyOps(txCtx, req.ID, paymentOps); err != nil {
				return fmt.Errorf("apply payment ops: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update entity", "error", err, "id", req.ID)
		return nil, err
	}

	s.logger.Info("Entity updated", "id", req.ID)

	if s.dispatcher != nil && (itemOps != nil || paymentOps != nil) {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeChildrenReconciled, req.ID, nil))
	}

	return s.Get(ctx, req.ID)
}
