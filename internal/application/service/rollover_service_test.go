package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/event"
	"github.com/storeops/opsflow/internal/domain/recurrence"
	"github.com/storeops/opsflow/internal/domain/workflow"
)

func fixedToday() time.Time {
	return time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
}

func crmTicket(id int64) *entity.WorkflowEntity {
	return &entity.WorkflowEntity{
		ID:          id,
		Kind:        workflow.KindCRMTicket,
		Status:      workflow.StatusOpen,
		CustomerRef: "cust-1",
		Motive:      "late delivery",
	}
}

func finalizingEngine(t *testing.T) *mockEngine {
	t.Helper()
	return &mockEngine{
		transitionFunc: func(ctx context.Context, entityID int64, to workflow.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error) {
			ent := crmTicket(entityID)
			ent.Status = to
			return ent, nil
		},
	}
}

func repoWith(ent *entity.WorkflowEntity) *mockEntityRepo {
	return &mockEntityRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkflowEntity, error) {
			if ent != nil && ent.ID == id {
				return ent, nil
			}
			return nil, nil
		},
	}
}

func TestRollover_RequiresComment(t *testing.T) {
	svc := NewRolloverService(finalizingEngine(t), &mockEntityService{}, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{})

	_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "", false, NextContact{})
	if !errors.Is(err, ErrMissingComment) {
		t.Errorf("error = %v, want ErrMissingComment", err)
	}
}

func TestRollover_EntityNotFound(t *testing.T) {
	svc := NewRolloverService(finalizingEngine(t), &mockEntityService{}, repoWith(nil), &mockDispatcher{}, noopLogger{})

	_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 42, testActor, "done", false, NextContact{})
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRollover_FinalizeOnly(t *testing.T) {
	var transitionedTo workflow.Status
	engine := &mockEngine{
		transitionFunc: func(ctx context.Context, entityID int64, to workflow.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error) {
			transitionedTo = to
			ent := crmTicket(entityID)
			ent.Status = to
			return ent, nil
		},
	}

	svc := NewRolloverService(engine, &mockEntityService{}, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{})

	result, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "resolved", false, NextContact{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transitionedTo != workflow.StatusFinalized {
		t.Errorf("transitioned to %v, want the kind's final status", transitionedTo)
	}
	if result.Successor != nil || result.Link != nil {
		t.Error("finalize without spawn must not produce a successor")
	}
}

func TestRollover_SpawnSuccessorWithInterval(t *testing.T) {
	var created *CreateEntityRequest
	entityService := &mockEntityService{
		createFunc: func(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
			created = &req
			return &entity.WorkflowEntity{ID: 2, Kind: req.Kind, Status: workflow.StatusOpen, NextContactAt: req.NextContactAt}, nil
		},
	}

	disp := &mockDispatcher{}
	svc := NewRolloverService(finalizingEngine(t), entityService, repoWith(crmTicket(1)), disp, noopLogger{},
		WithRolloverClock(fixedToday))

	result, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "call back in a month", true, ContactInDays(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("successor was never created")
	}
	if created.Kind != workflow.KindCRMTicket {
		t.Errorf("successor kind = %v, want the original's kind", created.Kind)
	}
	if created.CustomerRef != "cust-1" {
		t.Errorf("successor customer = %q, want the original's customer", created.CustomerRef)
	}

	want := time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)
	if created.NextContactAt == nil || !created.NextContactAt.Equal(want) {
		t.Errorf("next contact = %v, want %v (today + 30 days)", created.NextContactAt, want)
	}

	if result.Link == nil || result.Link.OriginID != 1 || result.Link.SuccessorID != 2 {
		t.Errorf("link = %+v, want origin 1 -> successor 2", result.Link)
	}

	found := false
	for _, evt := range disp.events {
		if evt.Type == event.TypeRolloverCompleted {
			found = true
		}
	}
	if !found {
		t.Error("expected a rollover_completed event")
	}
}

func TestRollover_SpawnSuccessorWithAbsoluteDate(t *testing.T) {
	var created *CreateEntityRequest
	entityService := &mockEntityService{
		createFunc: func(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
			created = &req
			return &entity.WorkflowEntity{ID: 2, Kind: req.Kind, NextContactAt: req.NextContactAt}, nil
		},
	}

	svc := NewRolloverService(finalizingEngine(t), entityService, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{},
		WithRolloverClock(fixedToday))

	// An absolute date is used verbatim, not resolved against today
	date := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "follow up", true, ContactOnDate(date))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || created.NextContactAt == nil || !created.NextContactAt.Equal(date) {
		t.Errorf("next contact = %v, want the absolute date %v", created.NextContactAt, date)
	}
}

// The successor must land with its schedule in a single creation; a
// failed creation leaves no row, so retrying it cannot duplicate the
// successor.
func TestRollover_SuccessorScheduledAtCreation(t *testing.T) {
	var created *CreateEntityRequest
	entityService := &mockEntityService{
		createFunc: func(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
			created = &req
			return &entity.WorkflowEntity{ID: 2, Kind: req.Kind, Status: workflow.StatusOpen, NextContactAt: req.NextContactAt}, nil
		},
	}

	svc := NewRolloverService(finalizingEngine(t), entityService, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{},
		WithRolloverClock(fixedToday))

	result, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "call back", true, ContactInDays(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || created.NextContactAt == nil {
		t.Fatal("the creation request must carry the resolved next-contact date")
	}
	want := time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)
	if !created.NextContactAt.Equal(want) {
		t.Errorf("next contact = %v, want %v", created.NextContactAt, want)
	}
	if result.Successor.NextContactAt == nil || !result.Successor.NextContactAt.Equal(want) {
		t.Errorf("successor next contact = %v, want %v", result.Successor.NextContactAt, want)
	}
}

func TestRollover_AmbiguousScheduleLeavesNoEffect(t *testing.T) {
	engineCalled := false
	engine := &mockEngine{
		transitionFunc: func(ctx context.Context, entityID int64, to workflow.Status, actor entity.Actor, comment string) (*entity.WorkflowEntity, error) {
			engineCalled = true
			return crmTicket(entityID), nil
		},
	}

	svc := NewRolloverService(engine, &mockEntityService{}, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{},
		WithRolloverClock(fixedToday))

	t.Run("neither days nor date", func(t *testing.T) {
		_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "x", true, NextContact{})
		if !errors.Is(err, ErrAmbiguousSchedule) {
			t.Errorf("error = %v, want ErrAmbiguousSchedule", err)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "x", true, ContactInDays(400))
		if !errors.Is(err, recurrence.ErrInvalidInterval) {
			t.Errorf("error = %v, want ErrInvalidInterval", err)
		}
	})

	if engineCalled {
		t.Error("a schedule validation failure must not finalize the entity")
	}
}

func TestRollover_PartialFailureSurfacesFinalizedEntity(t *testing.T) {
	entityService := &mockEntityService{
		createFunc: func(ctx context.Context, req CreateEntityRequest) (*entity.WorkflowEntity, error) {
			return nil, errors.New("datastore unavailable")
		},
	}

	svc := NewRolloverService(finalizingEngine(t), entityService, repoWith(crmTicket(1)), &mockDispatcher{}, noopLogger{},
		WithRolloverClock(fixedToday))

	_, err := svc.FinalizeAndMaybeSpawn(context.Background(), 1, testActor, "closing", true, ContactInDays(7))

	var partial *PartialRolloverError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want *PartialRolloverError", err)
	}
	if partial.Finalized == nil || partial.Finalized.Status != workflow.StatusFinalized {
		t.Error("the partial error must carry the durably finalized entity")
	}
}
