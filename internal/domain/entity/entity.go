package entity

import (
	"time"

	"github.com/storeops/opsflow/internal/domain/workflow"
)

// Actor identifies who performed an action
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkflowEntity is any business object carrying a status lifecycle:
// a delivery route, return case, exchange, refund, recurring order or
// CRM ticket. Entities are never physically deleted; terminal statuses
// are kept for audit.
type WorkflowEntity struct {
	ID            int64             `json:"id"`
	Kind          workflow.Kind     `json:"kind"`
	Status        workflow.Status   `json:"status"`
	CustomerRef   string            `json:"customer_ref"`
	Motive        string            `json:"motive"`
	Notes         string            `json:"notes"`
	NextContactAt *time.Time        `json:"next_contact_at,omitempty"`
	History       []*HistoryEntry   `json:"history,omitempty"`
	LineItems     []*LineItem       `json:"line_items,omitempty"`
	Payments      []*Payment        `json:"payments,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SuccessorLink relates a finalized entity to the entity spawned on its
// behalf. It is action-result metadata, not persisted state on either side.
type SuccessorLink struct {
	OriginID    int64 `json:"origin_id"`
	SuccessorID int64 `json:"successor_id"`
}
