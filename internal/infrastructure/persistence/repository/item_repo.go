package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/reconcile"
	"go.uber.org/zap"
)

// LineItemRepository implements port.LineItemRepository
type LineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) port.LineItemRepository {
	return &LineItemRepository{
		db:     db,
		logger: logger,
	}
}

// GetByEntityID retrieves all line items owned by an entity
func (r *LineItemRepository) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.LineItem, error) {
	query := `
		SELECT id, entity_id, code, description, quantity, created_at
		FROM line_items
		WHERE entity_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityID)
	if err != nil {
		r.logger.Error("Failed to get line items", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.LineItem
	for rows.Next() {
		var item entity.LineItem
		var id int64

		err := rows.Scan(
			&id,
			&item.EntityID,
			&item.Code,
			&item.Description,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}

		item.Ref = entity.ExistingRef(id)
		items = append(items, &item)
	}

	return items, rows.Err()
}

// CountByEntityID returns the number of line items owned by an entity
func (r *LineItemRepository) CountByEntityID(ctx context.Context, entityID int64) (int, error) {
	query := `SELECT COUNT(*) FROM line_items WHERE entity_id = ?`

	var count int
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, entityID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count line items", zap.Int64("entity_id", entityID), zap.Error(err))
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}

	return count, nil
}

// ApplyOps executes a reconciliation result: inserts, then full-field
// updates, then deletes. The caller provides the enclosing transaction.
func (r *LineItemRepository) ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.LineItem]) error {
	ex := getExecutor(ctx, r.db)

	for _, item := range ops.ToInsert {
		result, err := ex.ExecContext(ctx, `
			INSERT INTO line_items (entity_id, code, description, quantity)
			VALUES (?, ?, ?, ?)
		`, entityID, item.Code, item.Description, item.Quantity)
		if err != nil {
			r.logger.Error("Failed to insert line item", zap.Int64("entity_id", entityID), zap.Error(err))
			return fmt.Errorf("failed to insert line item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.Ref = entity.ExistingRef(id)
		item.EntityID = entityID
	}

	for _, item := range ops.ToUpdate {
		id, _ := item.Ref.ID()
		_, err := ex.ExecContext(ctx, `
			UPDATE line_items
			SET code = ?, description = ?, quantity = ?
			WHERE id = ? AND entity_id = ?
		`, item.Code, item.Description, item.Quantity, id, entityID)
		if err != nil {
			r.logger.Error("Failed to update line item", zap.Int64("id", id), zap.Error(err))
			return fmt.Errorf("failed to update line item: %w", err)
		}
	}

	for _, id := range ops.ToDelete {
		_, err := ex.ExecContext(ctx, `
			DELETE FROM line_items WHERE id = ? AND entity_id = ?
		`, id, entityID)
		if err != nil {
			r.logger.Error("Failed to delete line item", zap.Int64("id", id), zap.Error(err))
			return fmt.Errorf("failed to delete line item: %w", err)
		}
	}

	return nil
}

// Verify interface compliance
var _ port.LineItemRepository = (*LineItemRepository)(nil)
