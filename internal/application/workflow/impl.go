package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/storeops/opsflow/internal/application/dispatcher"
	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/event"
	domainwf "github.com/storeops/opsflow/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	entityRepo port.EntityRepository
	itemRepo   port.LineItemRepository
	historyRepo port.HistoryRepository
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	now        func() time.Time
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting status events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithClock overrides the engine's time source
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	entityRepo port.EntityRepository,
	itemRepo port.LineItemRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		entityRepo:  entityRepo,
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *engineImpl) Transition(ctx context.Context, entityID int64, to domainwf.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error) {
	ent, err := e.load(ctx, entityID)
	if err != nil {
		return nil, err
	}

	machine, err := domainwf.NewMachine(ent.Kind, ent.Status)
	if err != nil {
		return nil, err
	}

	// Guarded moves read the parent's line item count from the context
	if ent.Kind == domainwf.KindReturnCase {
		count, err := e.itemRepo.CountByEntityID(ctx, entityID)
		if err != nil {
			return nil, fmt.Errorf("count line items: %w", err)
		}
		ctx = domainwf.WithLineItemCount(ctx, count)
	}

	previous := ent.Status
	if err := machine.Move(ctx, to); err != nil {
		return nil, err
	}

	entry := &entity.HistoryEntry{
		EntityID:    entityID,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Description: transitionDescription(previous, to, comment),
		Status:      to,
		Timestamp:   e.now(),
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.entityRepo.UpdateStatus(txCtx, entityID, to); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := e.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ent.Status = to
	ent.UpdatedAt = entry.Timestamp
	ent.AppendHistory(entry)

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeStatusChanged,
			entityID,
			map[string]interface{}{
				"previous_status": previous.String(),
				"new_status":      to.String(),
				"actor_id":        actor.ID,
			},
		))
	}

	return ent, nil
}

func (e *engineImpl) PermittedTargets(ctx context.Context, entityID int64) ([]domainwf.Status, error) {
	ent, err := e.load(ctx, entityID)
	if err != nil {
		return nil, err
	}

	machine, err := domainwf.NewMachine(ent.Kind, ent.Status)
	if err != nil {
		return nil, err
	}
	return machine.PermittedTargets(), nil
}

func (e *engineImpl) load(ctx context.Context, entityID int64) (*entity.WorkflowEntity, error) {
	ent, err := e.entityRepo.GetByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch entity: %w", err)
	}
	if ent == nil {
		return nil, fmt.Errorf("entity %d: %w", entityID, port.ErrNotFound)
	}
	return ent, nil
}

// transitionDescription builds the audit entry text. The caller's comment
// takes precedence over the generated summary.
func transitionDescription(from, to domainwf.Status, comment string) string {
	if comment != "" {
		return comment
	}
	return fmt.Sprintf("Status changed from %s to %s", from, to)
}
