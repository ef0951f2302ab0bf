package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/reminders"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// RemindersHandler serves payment reminder endpoints.
type RemindersHandler struct {
	BaseHandler
	svc *reminders.Service
}

// NewRemindersHandler creates a reminders handler.
func NewRemindersHandler(svc *reminders.Service) *RemindersHandler {
	return &RemindersHandler{svc: svc}
}

// RegisterRoutes attaches reminder routes to the group.
func (h *RemindersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/due", h.ListDue)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/complete", h.Complete)
}

// List handles GET /.
func (h *RemindersHandler) List(c *gin.Context) {
	listFilter := reminders.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "due_date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Done = h.ParseBoolQuery(c, "done")

	var ok bool
	if listFilter.CustomerID, ok = h.ParseIDQuery(c, "customerId"); !ok {
		return
	}
	if listFilter.DueBefore, ok = h.ParseTimeQuery(c, "dueBefore"); !ok {
		return
	}
	if listFilter.DueAfter, ok = h.ParseTimeQuery(c, "dueAfter"); !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), listFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ReminderResponse, 0, len(result.Items))
	for _, r := range result.Items {
		items = append(items, dto.FromReminder(r))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ListDue handles GET /due: open reminders due by the given time
// (default now).
func (h *RemindersHandler) ListDue(c *gin.Context) {
	by, ok := h.ParseTimeQuery(c, "by")
	if !ok {
		return
	}
	deadline := time.Now()
	if by != nil {
		deadline = *by
	}

	due, err := h.svc.ListDue(c.Request.Context(), deadline)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ReminderResponse, 0, len(due))
	for _, r := range due {
		items = append(items, dto.FromReminder(r))
	}

	h.OK(c, gin.H{"items": items})
}

// Get handles GET /:id.
func (h *RemindersHandler) Get(c *gin.Context) {
	reminderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	r, err := h.svc.GetByID(c.Request.Context(), reminderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReminder(r))
}

// Create handles POST /.
func (h *RemindersHandler) Create(c *gin.Context) {
	var req dto.CreateReminderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.svc.Create(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromReminder(r))
}

// Update handles PUT /:id.
func (h *RemindersHandler) Update(c *gin.Context) {
	reminderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReminderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.svc.GetByID(c.Request.Context(), reminderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(r)

	if err := h.svc.Update(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReminder(r))
}

// Delete handles DELETE /:id.
func (h *RemindersHandler) Delete(c *gin.Context) {
	reminderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), reminderID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Complete handles POST /:id/complete.
func (h *RemindersHandler) Complete(c *gin.Context) {
	reminderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Complete(c.Request.Context(), reminderID); err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.svc.GetByID(c.Request.Context(), reminderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReminder(r))
}
