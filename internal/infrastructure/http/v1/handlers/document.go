package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/id"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

// DocumentService is the contract document handlers need from document
// services.
type DocumentService[T any] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, docID id.ID) (T, error)
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, docID id.ID) error
	Post(ctx context.Context, docID id.ID) error
	Unpost(ctx context.Context, docID id.ID) error
}

// AuditLogger records document mutations into the audit trail.
// Implemented by postgres.AuditService.
type AuditLogger interface {
	Log(ctx context.Context, entry postgres.AuditEntry) error
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// DocumentHandlerConfig configures a generic document handler.
type DocumentHandlerConfig[T any, C any, U any] struct {
	Service    DocumentService[T]
	EntityName string

	// MapCreate converts a bound create request into a new document.
	MapCreate func(req *C) (T, error)

	// ShouldPost reports whether the create request asked for
	// immediate posting.
	ShouldPost func(req *C) bool

	// PostAndSave persists and posts in a single transaction. When nil
	// the handler falls back to Create followed by Post.
	PostAndSave func(ctx context.Context, doc T) error

	// MapUpdate applies a bound update request to an existing document.
	MapUpdate func(req *U, existing T) error

	// MapToDTO converts a document into its response representation.
	MapToDTO func(doc T) any

	// Audit, when set, records every mutation. Nil disables auditing.
	Audit AuditLogger
}

// BaseDocumentHandler serves the standard document endpoints. Concrete
// handlers embed it and add their own List.
type BaseDocumentHandler[T any, C any, U any] struct {
	BaseHandler
	cfg DocumentHandlerConfig[T, C, U]
}

// NewBaseDocumentHandler creates a document handler from config.
func NewBaseDocumentHandler[T any, C any, U any](cfg DocumentHandlerConfig[T, C, U]) *BaseDocumentHandler[T, C, U] {
	return &BaseDocumentHandler[T, C, U]{cfg: cfg}
}

// Get handles GET /:id.
func (h *BaseDocumentHandler[T, C, U]) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.cfg.Service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.cfg.MapToDTO(doc))
}

// Create handles POST /. When the request asks for immediate posting
// the document is saved and posted atomically.
func (h *BaseDocumentHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.cfg.MapCreate(&req)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.cfg.ShouldPost != nil && h.cfg.ShouldPost(&req) && h.cfg.PostAndSave != nil {
		err = h.cfg.PostAndSave(ctx, doc)
	} else {
		err = h.cfg.Service.Create(ctx, doc)
		if err == nil && h.cfg.ShouldPost != nil && h.cfg.ShouldPost(&req) {
			err = h.postFresh(ctx, &doc)
		}
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.cfg.MapToDTO(doc)
	h.audit(ctx, postgres.AuditActionCreate, h.documentID(doc), response)
	h.Created(c, response)
}

// postFresh posts the just-created document and reloads it so the
// response reflects the posted state.
func (h *BaseDocumentHandler[T, C, U]) postFresh(ctx context.Context, doc *T) error {
	docID := h.documentID(*doc)
	if err := h.cfg.Service.Post(ctx, docID); err != nil {
		return err
	}
	fresh, err := h.cfg.Service.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	*doc = fresh
	return nil
}

func (h *BaseDocumentHandler[T, C, U]) documentID(doc T) id.ID {
	type identifiable interface{ GetID() id.ID }
	if d, ok := any(doc).(identifiable); ok {
		return d.GetID()
	}
	return id.ID{}
}

// audit records the mutation into the trail. Audit failures are logged
// and never fail the request.
func (h *BaseDocumentHandler[T, C, U]) audit(ctx context.Context, action postgres.AuditAction, entityID id.ID, snapshot any) {
	if h.cfg.Audit == nil {
		return
	}

	var changes json.RawMessage
	if snapshot != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			changes = data
		}
	}

	err := h.cfg.Audit.Log(ctx, postgres.AuditEntry{
		EntityType: h.cfg.EntityName,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
	})
	if err != nil {
		logger.Warn(ctx, "audit write failed",
			"entity", h.cfg.EntityName,
			"entity_id", entityID,
			"action", string(action),
			"error", err,
		)
	}
}

// History handles GET /:id/history, returning the document's audit trail.
func (h *BaseDocumentHandler[T, C, U]) History(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if h.cfg.Audit == nil {
		h.OK(c, []postgres.AuditEntry{})
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.cfg.Audit.GetEntityHistory(c.Request.Context(), h.cfg.EntityName, docID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []postgres.AuditEntry{}
	}

	h.OK(c, entries)
}

// Update handles PUT /:id. Posted documents are reposted atomically:
// the old movements are reversed and the edited document reapplied in
// one transaction.
func (h *BaseDocumentHandler[T, C, U]) Update(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.cfg.Service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.cfg.MapUpdate(&req, existing); err != nil {
		h.Error(c, err)
		return
	}

	if h.isPosted(existing) && h.cfg.PostAndSave != nil {
		err = h.cfg.PostAndSave(ctx, existing)
	} else {
		err = h.cfg.Service.Update(ctx, existing)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.cfg.MapToDTO(existing)
	h.audit(ctx, postgres.AuditActionUpdate, docID, response)
	h.OK(c, response)
}

func (h *BaseDocumentHandler[T, C, U]) isPosted(doc T) bool {
	type posted interface{ IsPosted() bool }
	if d, ok := any(doc).(posted); ok {
		return d.IsPosted()
	}
	return false
}

// Delete handles DELETE /:id. Posted documents are unposted first by
// the service, reversing their register movements.
func (h *BaseDocumentHandler[T, C, U]) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.cfg.Service.Delete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.audit(ctx, postgres.AuditActionDelete, docID, nil)
	h.NoContent(c)
}

// Post handles POST /:id/post.
func (h *BaseDocumentHandler[T, C, U]) Post(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.cfg.Service.Post(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.cfg.Service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.cfg.MapToDTO(doc)
	h.audit(ctx, postgres.AuditActionPost, docID, response)
	h.OK(c, response)
}

// Unpost handles POST /:id/unpost.
func (h *BaseDocumentHandler[T, C, U]) Unpost(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.cfg.Service.Unpost(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.cfg.Service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.cfg.MapToDTO(doc)
	h.audit(ctx, postgres.AuditActionUnpost, docID, response)
	h.OK(c, response)
}
