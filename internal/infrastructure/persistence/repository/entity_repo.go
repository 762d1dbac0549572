package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// EntityRepository implements port.EntityRepository
type EntityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEntityRepository creates a new workflow entity repository
func NewEntityRepository(db *sql.DB, logger *zap.Logger) port.EntityRepository {
	return &EntityRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new entity and assigns its id
func (r *EntityRepository) Create(ctx context.Context, e *entity.WorkflowEntity) error {
	query := `
		INSERT INTO entities (
			kind, status, customer_ref, motive, notes, next_contact_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var nextContact sql.NullTime
	if e.NextContactAt != nil {
		nextContact = sql.NullTime{Time: *e.NextContactAt, Valid: true}
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		e.Kind.String(),
		e.Status.String(),
		e.CustomerRef,
		e.Motive,
		e.Notes,
		nextContact,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create entity", zap.Error(err))
		return fmt.Errorf("failed to create entity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// GetByID retrieves an entity by ID; returns nil without error when absent
func (r *EntityRepository) GetByID(ctx context.Context, id int64) (*entity.WorkflowEntity, error) {
	query := `
		SELECT id, kind, status, customer_ref, motive, notes,
			next_contact_at, created_at, updated_at
		FROM entities
		WHERE id = ?
	`

	var e entity.WorkflowEntity
	var kind, status string
	var nextContact sql.NullTime

	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&kind,
		&status,
		&e.CustomerRef,
		&e.Motive,
		&e.Notes,
		&nextContact,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get entity by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	e.Kind = workflow.Kind(kind)
	e.Status = workflow.Status(status)
	if nextContact.Valid {
		e.NextContactAt = &nextContact.Time
	}

	return &e, nil
}

// UpdateStatus sets the entity's status and stamps updated_at
func (r *EntityRepository) UpdateStatus(ctx context.Context, id int64, status workflow.Status) error {
	query := `UPDATE entities SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status.String(), id)
	if err != nil {
		r.logger.Error("Failed to update entity status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// UpdateNotes overwrites the entity's free-form notes
func (r *EntityRepository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	query := `UPDATE entities SET notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, notes, id)
	if err != nil {
		r.logger.Error("Failed to update entity notes", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update notes: %w", err)
	}

	return nil
}

// List retrieves a page of entities of one kind, newest first
func (r *EntityRepository) List(ctx context.Context, kind workflow.Kind, limit, offset int) ([]*entity.WorkflowEntity, error) {
	query := `
		SELECT id, kind, status, customer_ref, motive, notes,
			next_contact_at, created_at, updated_at
		FROM entities
		WHERE kind = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, kind.String(), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list entities", zap.String("kind", kind.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*entity.WorkflowEntity
	for rows.Next() {
		var e entity.WorkflowEntity
		var k, status string
		var nextContact sql.NullTime

		err := rows.Scan(
			&e.ID,
			&k,
			&status,
			&e.CustomerRef,
			&e.Motive,
			&e.Notes,
			&nextContact,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}

		e.Kind = workflow.Kind(k)
		e.Status = workflow.Status(status)
		if nextContact.Valid {
			e.NextContactAt = &nextContact.Time
		}

		entities = append(entities, &e)
	}

	return entities, rows.Err()
}

// Verify interface compliance
var _ port.EntityRepository = (*EntityRepository)(nil)
