package service

import (
	"context"
	"errors"

	"github.com/storeops/opsflow/internal/application/dispatcher"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/event"
	"github.com/storeops/opsflow/internal/domain/reconcile"
	"github.com/storeops/opsflow/internal/domain/workflow"
)

// Mock repositories

type mockEntityRepo struct {
	createFunc       func(ctx context.Context, e *entity.WorkflowEntity) error
	getByIDFunc      func(ctx context.Context, id int64) (*entity.WorkflowEntity, error)
	updateStatusFunc func(ctx context.Context, id int64, status workflow.Status) error
	updateNotesFunc  func(ctx context.Context, id int64, notes string) error
	listFunc         func(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error)
}

func (m *mockEntityRepo) Create(ctx context.Context, e *entity.WorkflowEntity) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	e.ID = 1
	return nil
}

func (m *mockEntityRepo) GetByID(ctx context.Context, id int64) (*entity.WorkflowEntity, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkflowEntity{ID: id, Kind: workflow.KindCRMTicket, Status: workflow.StatusOpen}, nil
}

func (m *mockEntityRepo) UpdateStatus(ctx context.Context, id int64, status workflow.Status) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockEntityRepo) UpdateNotes(ctx context.Context, id int64, notes string) error {
	if m.updateNotesFunc != nil {
		return m.updateNotesFunc(ctx, id, notes)
	}
	return nil
}

func (m *mockEntityRepo) List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, kind, limit, offset)
	}
	return nil, nil
}

type mockItemRepo struct {
	getFunc      func(ctx context.Context, entityID int64) ([]*entity.LineItem, error)
	countFunc    func(ctx context.Context, entityID int64) (int, error)
	applyOpsFunc func(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.LineItem]) error
}

func (m *mockItemRepo) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.LineItem, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, entityID)
	}
	return nil, nil
}

func (m *mockItemRepo) CountByEntityID(ctx context.Context, entityID int64) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, entityID)
	}
	return 0, nil
}

func (m *mockItemRepo) ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.LineItem]) error {
	if m.applyOpsFunc != nil {
		return m.applyOpsFunc(ctx, entityID, ops)
	}
	return nil
}

type mockPaymentRepo struct {
	getFunc      func(ctx context.Context, entityID int64) ([]*entity.Payment, error)
	applyOpsFunc func(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.Payment]) error
}

func (m *mockPaymentRepo) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.Payment, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, entityID)
	}
	return nil, nil
}

func (m *mockPaymentRepo) ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.Payment]) error {
	if m.applyOpsFunc != nil {
		return m.applyOpsFunc(ctx, entityID, ops)
	}
	return nil
}

type mockHistoryRepo struct {
	entries   []*entity.HistoryEntry
	appendErr error
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepo) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.HistoryEntry, error) {
	return m.entries, nil
}

type mockTxManager struct {
	beginErr error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx)
}

type mockDispatcher struct {
	events []*event.Event
}

func (m *mockDispatcher) Subscribe(eventType event.Type, name string, handler dispatcher.Handler) {}

func (m *mockDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *mockDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	m.events = append(m.events, evt)
}

func (m *mockDispatcher) Close() error { return nil }

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// mockEngine implements the workflow engine interface with func fields
type mockEngine struct {
	transitionFunc func(ctx context.Context, entityID int64, to workflow.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error)
}

func (m *mockEngine) Transition(ctx context.Context, entityID int64, to workflow.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error) {
	if m.transitionFunc != nil {
		return m.transitionFunc(ctx, entityID, to, actor, comment)
	}
	return nil, errors.New("transition not configured")
}

func (m *mockEngine) PermittedTargets(ctx context.Context, entityID int64) ([]workflow.Status, error) {
	return nil, nil
}

// mockEntityService implements EntityService with func fields
type mockEntityService struct {
	createFunc func(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error)
}

func (m *mockEntityService) Create(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errors.New("create not configured")
}

func (m *mockEntityService) Get(ctx context.Context, id int64) (*entity.WorkflowEntity, error) {
	return nil, errors.New("not configured")
}

func (m *mockEntityService) List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error) {
	return nil, nil
}

func (m *mockEntityService) Update(ctx context.Context, req UpdateEntityRequest) (*entity.WorkflowEntity, error) {
	return nil, errors.New("not configured")
}

var testActor = entity.Actor{ID: "u-1", Name: "Ana"}
