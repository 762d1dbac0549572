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

// PaymentRepository implements port.PaymentRepository
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) port.PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByEntityID retrieves all payments owned by an entity
func (r *PaymentRepository) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.Payment, error) {
	query := `
		SELECT id, entity_id, method, amount_cents, installments, received, created_at
		FROM payments
		WHERE entity_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityID)
	if err != nil {
		r.logger.Error("Failed to get payments", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var id int64

		err := rows.Scan(
			&id,
			&p.EntityID,
			&p.Method,
			&p.AmountCents,
			&p.Installments,
			&p.Received,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p.Ref = entity.ExistingRef(id)
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}

// ApplyOps executes a reconciliation result within the caller's transaction
func (r *PaymentRepository) ApplyOps(ctx context.Context, entityID int64, ops *reconcile.Ops[*entity.Payment]) error {
	ex := getExecutor(ctx, r.db)

	for _, p := range ops.ToInsert {
		result, err := ex.ExecContext(ctx, `
			INSERT INTO payments (entity_id, method, amount_cents, installments, received)
			VALUES (?, ?, ?, ?, ?)
		`, entityID, p.Method, p.AmountCents, p.Installments, p.Received)
		if err != nil {
			r.logger.Error("Failed to insert payment", zap.Int64("entity_id", entityID), zap.Error(err))
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		p.Ref = entity.ExistingRef(id)
		p.EntityID = entityID
	}

	for _, p := range ops.ToUpdate {
		id, _ := p.Ref.ID()
		_, err := ex.ExecContext(ctx, `
			UPDATE payments
			SET method = ?, amount_cents = ?, installments = ?, received = ?
			WHERE id = ? AND entity_id = ?
		`, p.Method, p.AmountCents, p.Installments, p.Received, id, entityID)
		if err != nil {
			r.logger.Error("Failed to update payment", zap.Int64("id", id), zap.Error(err))
			return fmt.Errorf("failed to update payment: %w", err)
		}
	}

	for _, id := range ops.ToDelete {
		_, err := ex.ExecContext(ctx, `
			DELETE FROM payments WHERE id = ? AND entity_id = ?
		`, id, entityID)
		if err != nil {
			r.logger.Error("Failed to delete payment", zap.Int64("id", id), zap.Error(err))
			return fmt.Errorf("failed to delete payment: %w", err)
		}
	}

	return nil
}

// Verify interface compliance
var _ port.PaymentRepository = (*PaymentRepository)(nil)
