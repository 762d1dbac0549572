package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storeops/opsflow/internal/application/dispatcher"
	"github.com/storeops/opsflow/internal/application/port"
	workflowapp "github.com/storeops/opsflow/internal/application/workflow"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/event"
	"github.com/storeops/opsflow/internal/domain/recurrence"
	"github.com/storeops/opsflow/internal/domain/workflow"
)

var (
	// ErrMissingComment is returned when finalization is requested without
	// a comment; finalize-without-comment is never allowed
	ErrMissingComment = errors.New("finalization comment is required")

	// ErrAmbiguousSchedule is returned when the successor schedule supplies
	// both a day interval and an absolute date, or neither
	ErrAmbiguousSchedule = errors.New("exactly one of interval days or absolute date must be provided")
)

// PartialRolloverError reports a rollover that finalized the original
// entity but failed to create its successor. Finalization is the durable,
// desired outcome and is not rolled back; the caller can retry successor
// creation without re-finalizing.
type PartialRolloverError struct {
	Finalized *entity.WorkflowEntity
	Err       error
}

func (e *PartialRolloverError) Error() string {
	return fmt.Sprintf("entity %d finalized but successor creation failed: %v", e.Finalized.ID, e.Err)
}

func (e *PartialRolloverError) Unwrap() error {
	return e.Err
}

// NextContact schedules the successor: either a day interval resolved
// against today, or an absolute date used verbatim.
type NextContact struct {
	days    int
	date    time.Time
	hasDays bool
	hasDate bool
}

// ContactInDays schedules the successor days from today
func ContactInDays(days int) NextContact {
	return NextContact{days: days, hasDays: true}
}

// ContactOnDate schedules the successor on an absolute date
func ContactOnDate(date time.Time) NextContact {
	return NextContact{date: date, hasDate: true}
}

func (nc NextContact) resolve(today time.Time) (time.Time, error) {
	switch {
	case nc.hasDays && nc.hasDate:
		return time.Time{}, fmt.Errorf("%w: got both", ErrAmbiguousSchedule)
	case nc.hasDate:
		return nc.date, nil
	case nc.hasDays:
		return recurrence.NextOccurrence(today, nc.days)
	default:
		return time.Time{}, fmt.Errorf("%w: got neither", ErrAmbiguousSchedule)
	}
}

// RolloverResult is the outcome of finalize-and-maybe-spawn
type RolloverResult struct {
	Finalized *entity.WorkflowEntity `json:"finalized"`
	Successor *entity.WorkflowEntity `json:"successor,omitempty"`
	Link      *entity.SuccessorLink  `json:"link,omitempty"`
}

// RolloverService finalizes an entity and optionally spawns a successor
// pre-populated from it.
type RolloverService interface {
	FinalizeAndMaybeSpawn(ctx context.Context, entityID int64, actor entity.Actor, comment string, spawnSuccessor bool, next NextContact) (*RolloverResult, error)
}

type rolloverServiceImpl struct {
	engine        workflowapp.Engine
	entityService EntityService
	entityRepo    port.EntityRepository
	dispatcher    dispatcher.Dispatcher
	logger        Logger
	now           func() time.Time
}

// RolloverOption configures the rollover service
type RolloverOption func(*rolloverServiceImpl)

// WithRolloverClock overrides the service's time source
func WithRolloverClock(now func() time.Time) RolloverOption {
	return func(s *rolloverServiceImpl) {
		s.now = now
	}
}

// NewRolloverService creates a new RolloverService
func NewRolloverService(
	engine workflowapp.Engine,
	entityService EntityService,
	entityRepo port.EntityRepository,
	disp dispatcher.Dispatcher,
	logger Logger,
	opts ...RolloverOption,
) RolloverService {
	s := &rolloverServiceImpl{
		engine:        engine,
		entityService: entityService,
		entityRepo:    entityRepo,
		dispatcher:    disp,
		logger:        logger,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FinalizeAndMaybeSpawn moves the entity into its kind's final status and,
// when requested, creates a successor of the same kind scheduled for the
// resolved next-contact date. Validation happens before the finalize so
// validation failures leave no partial effect; a successor-creation
// failure after a durable finalize surfaces as *PartialRolloverError.
func (s *rolloverServiceImpl) FinalizeAndMaybeSpawn(ctx context.Context, entityID int64, actor entity.Actor, comment string, spawnSuccessor bool, next NextContact) (*RolloverResult, error) {
	if comment == "" {
		return nil, ErrMissingComment
	}

	original, err := s.entityRepo.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("entity %d: %w", entityID, port.ErrNotFound)
	}

	final, err := workflow.FinalStatus(original.Kind)
	if err != nil {
		return nil, err
	}

	// Resolve the schedule up front: an ambiguous or invalid schedule is a
	// validation error and must not finalize anything.
	var nextAt time.Time
	if spawnSuccessor {
		if nextAt, err = next.resolve(s.now()); err != nil {
			return nil, err
		}
	}

	finalized, err := s.engine.Transition(ctx, entityID, final, actor, comment)
	if err != nil {
		return nil, err
	}

	if !spawnSuccessor {
		return &RolloverResult{Finalized: finalized}, nil
	}

	successor, err := s.spawnSuccessor(ctx, finalized, actor, nextAt)
	if err != nil {
		s.logger.Error("Successor creation failed after finalize",
			"error", err, "finalized_id", finalized.ID)
		return nil, &PartialRolloverError{Finalized: finalized, Err: err}
	}

	s.logger.Info("Rollover completed",
		"finalized_id", finalized.ID, "successor_id", successor.ID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeRolloverCompleted, finalized.ID, map[string]interface{}{
			"successor_id": successor.ID,
		}))
	}

	return &RolloverResult{
		Finalized: finalized,
		Successor: successor,
		Link: &entity.SuccessorLink{
			OriginID:    finalized.ID,
			SuccessorID: successor.ID,
		},
	}, nil
}

// spawnSuccessor creates the follow-up entity through the normal creation
// path, copying the original's reference fields and marking the motive as
// a continuation. The next-contact date rides in the creation request so
// the successor lands scheduled in one transaction; a failure here leaves
// no successor row behind.
func (s *rolloverServiceImpl) spawnSuccessor(ctx context.Context, original *entity.WorkflowEntity, actor entity.Actor, nextAt time.Time) (*entity.WorkflowEntity, error) {
	return s.entityService.Create(ctx, CreateEntityRequest{
		Kind:          original.Kind,
		CustomerRef:   original.CustomerRef,
		Motive:        fmt.Sprintf("Continuation of #%d: %s", original.ID, original.Motive),
		NextContactAt: &nextAt,
		Actor:         actor,
	})
}
