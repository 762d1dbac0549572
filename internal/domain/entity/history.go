package entity

import (
	"time"

	"github.com/storeops/opsflow/internal/domain/workflow"
)

// HistoryEntry is one immutable record in an entity's audit trail.
// Entries are appended on status transitions and never mutated or removed.
type HistoryEntry struct {
	ID          int64           `json:"id"`
	EntityID    int64           `json:"entity_id"`
	ActorID     string          `json:"actor_id"`
	ActorName   string          `json:"actor_name"`
	Description string          `json:"description"`
	Status      workflow.Status `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
}

// AppendHistory adds an entry to the entity's in-memory trail, keeping
// insertion order. Persistence of the entry is the repository's concern.
func (e *WorkflowEntity) AppendHistory(entry *HistoryEntry) {
	e.History = append(e.History, entry)
}
