package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/filter"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// CatalogHandlerConfig configures a generic catalog handler.
type CatalogHandlerConfig[T entity.Validatable, C any, U any] struct {
	Service    *domain.CatalogService[T]
	EntityName string

	// MapCreate converts a bound create request into a new entity.
	MapCreate func(req *C) (T, error)

	// MapUpdate applies a bound update request to an existing entity.
	MapUpdate func(req *U, existing T) error

	// MapToDTO converts an entity into its response representation.
	MapToDTO func(entity T) any
}

// CatalogHandler serves CRUD endpoints for one catalog.
type CatalogHandler[T entity.Validatable, C any, U any] struct {
	BaseHandler
	cfg CatalogHandlerConfig[T, C, U]
}

// NewCatalogHandler creates a catalog handler from config.
func NewCatalogHandler[T entity.Validatable, C any, U any](cfg CatalogHandlerConfig[T, C, U]) *CatalogHandler[T, C, U] {
	return &CatalogHandler[T, C, U]{cfg: cfg}
}

// RegisterRoutes attaches standard catalog routes to the group.
func (h *CatalogHandler[T, C, U]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/tree", h.GetTree)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/deletion-mark", h.SetDeletionMark)
}

// List handles GET /.
func (h *CatalogHandler[T, C, U]) List(c *gin.Context) {
	listFilter := domain.DefaultListFilter()
	listFilter.Search = c.Query("search")
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	if orderBy := c.Query("orderBy"); orderBy != "" {
		listFilter.OrderBy = orderBy
	}
	if v := h.ParseBoolQuery(c, "includeDeleted"); v != nil {
		listFilter.IncludeDeleted = *v
	}
	if parentID := c.Query("parentId"); parentID != "" {
		listFilter.ParentID = &parentID
	}
	listFilter.IsFolder = h.ParseBoolQuery(c, "isFolder")

	if raw := c.Query("filter"); raw != "" {
		var items []filter.Item
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter expression").WithDetail("error", err.Error()))
			return
		}
		listFilter.AdvancedFilters = items
	}

	result, err := h.cfg.Service.List(c.Request.Context(), listFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, h.cfg.MapToDTO(item))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /:id.
func (h *CatalogHandler[T, C, U]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.cfg.Service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.cfg.MapToDTO(item))
}

// Create handles POST /.
func (h *CatalogHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.cfg.MapCreate(&req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.cfg.Service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.cfg.MapToDTO(item))
}

// Update handles PUT /:id.
func (h *CatalogHandler[T, C, U]) Update(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.cfg.Service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.cfg.MapUpdate(&req, existing); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.cfg.Service.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.cfg.MapToDTO(existing))
}

// Delete handles DELETE /:id.
func (h *CatalogHandler[T, C, U]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.cfg.Service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetDeletionMark handles POST /:id/deletion-mark.
func (h *CatalogHandler[T, C, U]) SetDeletionMark(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.cfg.Service.SetDeletionMark(c.Request.Context(), entityID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}

// GetTree handles GET /tree.
func (h *CatalogHandler[T, C, U]) GetTree(c *gin.Context) {
	var rootID *id.ID
	if raw := c.Query("rootId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid root id").WithDetail("value", raw))
			return
		}
		rootID = &parsed
	}

	items, err := h.cfg.Service.GetTree(c.Request.Context(), rootID)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, h.cfg.MapToDTO(item))
	}

	h.OK(c, gin.H{"items": out})
}
