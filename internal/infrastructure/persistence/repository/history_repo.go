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

// HistoryRepository implements port.HistoryRepository. The table is
// append-only: no update or delete statement exists here.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append persists a new history entry
func (r *HistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO history_entries (
			entity_id, actor_id, actor_name, description, status, timestamp
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.EntityID,
		entry.ActorID,
		entry.ActorName,
		entry.Description,
		entry.Status.String(),
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry", zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByEntityID retrieves all history entries for an entity in insertion order
func (r *HistoryRepository) GetByEntityID(ctx context.Context, entityID int64) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, entity_id, actor_id, actor_name, description, status, timestamp
		FROM history_entries
		WHERE entity_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var entry entity.HistoryEntry
		var status string

		err := rows.Scan(
			&entry.ID,
			&entry.EntityID,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Description,
			&status,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Status = workflow.Status(status)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
