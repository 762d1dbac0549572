package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeops/opsflow/internal/application/port"
	"github.com/storeops/opsflow/internal/application/service"
	workflowapp "github.com/storeops/opsflow/internal/application/workflow"
	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/reconcile"
	"github.com/storeops/opsflow/internal/domain/recurrence"
	"github.com/storeops/opsflow/internal/domain/workflow"
	"github.com/storeops/opsflow/internal/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	entityService   service.EntityService
	rolloverService service.RolloverService
	engine          workflowapp.Engine
	reporter        *export.ExcelReporter
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	entityService service.EntityService,
	rolloverService service.RolloverService,
	engine workflowapp.Engine,
	reporter *export.ExcelReporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		entityService:   entityService,
		rolloverService: rolloverService,
		engine:          engine,
		reporter:        reporter,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ActorPayload identifies the user performing a mutation
type ActorPayload struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func (p ActorPayload) toActor() entity.Actor {
	return entity.Actor{ID: p.ID, Name: p.Name}
}

// LineItemPayload is a submitted line item. A missing id means the item
// is new; a present id refers to a persisted row.
type LineItemPayload struct {
	ID          *int64 `json:"id,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// PaymentPayload is a submitted payment entry
type PaymentPayload struct {
	ID           *int64 `json:"id,omitempty"`
	Method       string `json:"method"`
	AmountCents  int64  `json:"amount_cents"`
	Installments int    `json:"installments"`
	Received     bool   `json:"received"`
}

// CreateEntityPayload is the request body for entity creation
type CreateEntityPayload struct {
	Kind        string       `json:"kind" binding:"required"`
	CustomerRef string       `json:"customer_ref"`
	Motive      string       `json:"motive"`
	Notes       string       `json:"notes"`
	Actor       ActorPayload `json:"actor" binding:"required"`
}

// UpdateEntityPayload is the request body for entity updates. Omitted
// collections are left untouched; present collections are reconciled
// against the persisted rows.
type UpdateEntityPayload struct {
	Notes     *string            `json:"notes,omitempty"`
	LineItems *[]LineItemPayload `json:"line_items,omitempty"`
	Payments  *[]PaymentPayload  `json:"payments,omitempty"`
}

// TransitionPayload is the request body for a status transition
type TransitionPayload struct {
	To      string       `json:"to" binding:"required"`
	Comment string       `json:"comment"`
	Actor   ActorPayload `json:"actor" binding:"required"`
}

// RolloverPayload is the request body for finalize-and-maybe-spawn
type RolloverPayload struct {
	Comment         string       `json:"comment"`
	Actor           ActorPayload `json:"actor" binding:"required"`
	SpawnSuccessor  bool         `json:"spawn_successor"`
	NextContactDays *int         `json:"next_contact_days,omitempty"`
	NextContactDate *string      `json:"next_contact_date,omitempty"` // YYYY-MM-DD
}

// EntityResponse represents a workflow entity in API responses
type EntityResponse struct {
	ID            int64               `json:"id"`
	Kind          string              `json:"kind"`
	Status        string              `json:"status"`
	CustomerRef   string              `json:"customer_ref,omitempty"`
	Motive        string              `json:"motive,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	NextContactAt *string             `json:"next_contact_at,omitempty"`
	LineItems     []LineItemResponse  `json:"line_items,omitempty"`
	Payments      []PaymentResponse   `json:"payments,omitempty"`
	History       []HistoryResponse   `json:"history,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           int64  `json:"id"`
	Method       string `json:"method"`
	AmountCents  int64  `json:"amount_cents"`
	Installments int    `json:"installments"`
	Received     bool   `json:"received"`
}

// HistoryResponse represents an audit trail entry in API responses
type HistoryResponse struct {
	ID          int64  `json:"id"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

// ListEntitiesRequest represents query parameters for listing entities
type ListEntitiesRequest struct {
	Kind   string `form:"kind" binding:"required"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateEntity handles POST /api/entities
func (h *Handlers) CreateEntity(c *gin.Context) {
	var payload CreateEntityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	kind := workflow.Kind(payload.Kind)
	if !kind.IsValid() {
		h.badRequest(c, "unknown entity kind", nil)
		return
	}

	ent, err := h.entityService.Create(c.Request.Context(), service.CreateEntityRequest{
		Kind:        kind,
		CustomerRef: payload.CustomerRef,
		Motive:      payload.Motive,
		Notes:       payload.Notes,
		Actor:       payload.Actor.toActor(),
	})
	if err != nil {
		h.fail(c, "failed to create entity", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toEntityResponse(ent),
	})
}

// ListEntities handles GET /api/entities
func (h *Handlers) ListEntities(c *gin.Context) {
	var req ListEntitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	kind := workflow.Kind(req.Kind)
	if !kind.IsValid() {
		h.badRequest(c, "unknown entity kind", nil)
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	entities, err := h.entityService.List(c.Request.Context(), kind, req.Limit, req.Offset)
	if err != nil {
		h.fail(c, "failed to list entities", err)
		return
	}

	responses := make([]EntityResponse, 0, len(entities))
	for _, ent := range entities {
		responses = append(responses, toEntityResponse(ent))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

// GetEntity handles GET /api/entities/:id
func (h *Handlers) GetEntity(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	ent, err := h.entityService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get entity", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toEntityResponse(ent),
	})
}

// UpdateEntity handles PUT /api/entities/:id
func (h *Handlers) UpdateEntity(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	var payload UpdateEntityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	req := service.UpdateEntityRequest{
		ID:    id,
		Notes: payload.Notes,
	}
	if payload.LineItems != nil {
		req.LineItems = toLineItems(id, *payload.LineItems)
	}
	if payload.Payments != nil {
		req.Payments = toPayments(id, *payload.Payments)
	}

	ent, err := h.entityService.Update(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "failed to update entity", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toEntityResponse(ent),
	})
}

// GetHistory handles GET /api/entities/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	ent, err := h.entityService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get entity", err)
		return
	}

	entries := make([]HistoryResponse, 0, len(ent.History))
	for _, entry := range ent.History {
		entries = append(entries, toHistoryResponse(entry))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// PermittedTransitions handles GET /api/entities/:id/transitions
func (h *Handlers) PermittedTransitions(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	targets, err := h.engine.PermittedTargets(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get permitted transitions", err)
		return
	}

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.String())
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    names,
	})
}

// Transition handles POST /api/entities/:id/transition
func (h *Handlers) Transition(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	var payload TransitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	ent, err := h.engine.Transition(c.Request.Context(), id, workflow.Status(payload.To), payload.Actor.toActor(), payload.Comment)
	if err != nil {
		h.fail(c, "transition failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toEntityResponse(ent),
	})
}

// Rollover handles POST /api/entities/:id/rollover
func (h *Handlers) Rollover(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	var payload RolloverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	var next service.NextContact
	if payload.NextContactDays != nil {
		next = service.ContactInDays(*payload.NextContactDays)
	}
	if payload.NextContactDate != nil {
		date, err := time.Parse("2006-01-02", *payload.NextContactDate)
		if err != nil {
			h.badRequest(c, "invalid next_contact_date, expected YYYY-MM-DD", err)
			return
		}
		if payload.NextContactDays != nil {
			h.badRequest(c, "provide either next_contact_days or next_contact_date, not both", nil)
			return
		}
		next = service.ContactOnDate(date)
	}

	result, err := h.rolloverService.FinalizeAndMaybeSpawn(
		c.Request.Context(), id, payload.Actor.toActor(), payload.Comment, payload.SpawnSuccessor, next)
	if err != nil {
		var partial *service.PartialRolloverError
		if errors.As(err, &partial) {
			// The finalize is durable; report it alongside the failure so
			// the caller can retry successor creation only.
			h.logger.Error("Partial rollover", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, Response{
				Success: false,
				Data: gin.H{
					"finalized": toEntityResponse(partial.Finalized),
				},
				Error: partial.Error(),
			})
			return
		}
		h.fail(c, "rollover failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// ExportEntities handles GET /api/entities/export
func (h *Handlers) ExportEntities(c *gin.Context) {
	kind := workflow.Kind(c.Query("kind"))
	if !kind.IsValid() {
		h.badRequest(c, "unknown entity kind", nil)
		return
	}

	entities, err := h.entityService.List(c.Request.Context(), kind, 1000, 0)
	if err != nil {
		h.fail(c, "failed to list entities", err)
		return
	}

	path, err := h.reporter.WriteReport(kind, entities)
	if err != nil {
		h.fail(c, "failed to write report", err)
		return
	}

	c.FileAttachment(path, kind.String()+".xlsx")
}

// entityID parses the :id path parameter, writing the error response itself
func (h *Handlers) entityID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid entity ID", err)
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err)
	}
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// fail maps application errors to HTTP status codes
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "error", err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrUnknownKind),
		errors.Is(err, service.ErrMissingComment),
		errors.Is(err, service.ErrAmbiguousSchedule),
		errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, reconcile.ErrStaleChildReference),
		errors.Is(err, reconcile.ErrDuplicateChildReference):
		status = http.StatusBadRequest
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func toLineItems(entityID int64, payloads []LineItemPayload) []*entity.LineItem {
	items := make([]*entity.LineItem, 0, len(payloads))
	for _, p := range payloads {
		ref := entity.NewRef()
		if p.ID != nil {
			ref = entity.ExistingRef(*p.ID)
		}
		items = append(items, &entity.LineItem{
			Ref:         ref,
			EntityID:    entityID,
			Code:        p.Code,
			Description: p.Description,
			Quantity:    p.Quantity,
		})
	}
	return items
}

func toPayments(entityID int64, payloads []PaymentPayload) []*entity.Payment {
	payments := make([]*entity.Payment, 0, len(payloads))
	for _, p := range payloads {
		ref := entity.NewRef()
		if p.ID != nil {
			ref = entity.ExistingRef(*p.ID)
		}
		payments = append(payments, &entity.Payment{
			Ref:          ref,
			EntityID:     entityID,
			Method:       p.Method,
			AmountCents:  p.AmountCents,
			Installments: p.Installments,
			Received:     p.Received,
		})
	}
	return payments
}

// toEntityResponse converts a domain entity to the API response shape
func toEntityResponse(ent *entity.WorkflowEntity) EntityResponse {
	resp := EntityResponse{
		ID:          ent.ID,
		Kind:        ent.Kind.String(),
		Status:      ent.Status.String(),
		CustomerRef: ent.CustomerRef,
		Motive:      ent.Motive,
		Notes:       ent.Notes,
		CreatedAt:   ent.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   ent.UpdatedAt.Format(time.RFC3339),
	}

	if ent.NextContactAt != nil {
		next := ent.NextContactAt.Format("2006-01-02")
		resp.NextContactAt = &next
	}

	for _, item := range ent.LineItems {
		id, _ := item.Ref.ID()
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ID:          id,
			Code:        item.Code,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	for _, p := range ent.Payments {
		id, _ := p.Ref.ID()
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:           id,
			Method:       p.Method,
			AmountCents:  p.AmountCents,
			Installments: p.Installments,
			Received:     p.Received,
		})
	}

	for _, entry := range ent.History {
		resp.History = append(resp.History, toHistoryResponse(entry))
	}

	return resp
}

func toHistoryResponse(entry *entity.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:          entry.ID,
		ActorID:     entry.ActorID,
		ActorName:   entry.ActorName,
		Description: entry.Description,
		Status:      entry.Status.String(),
		Timestamp:   entry.Timestamp.Format(time.RFC3339),
	}
}
