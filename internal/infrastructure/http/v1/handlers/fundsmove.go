package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/fundsmove"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// FundsMoveHandler serves the funds move document endpoints: deposits,
// withdrawals, account-to-account transfers, and expenses.
type FundsMoveHandler struct {
	*BaseDocumentHandler[*fundsmove.FundsMove, dto.CreateFundsMoveRequest, dto.UpdateFundsMoveRequest]
	svc *fundsmove.Service
}

// NewFundsMoveHandler creates a funds move handler.
func NewFundsMoveHandler(svc *fundsmove.Service, audit AuditLogger) *FundsMoveHandler {
	base := NewBaseDocumentHandler(DocumentHandlerConfig[*fundsmove.FundsMove, dto.CreateFundsMoveRequest, dto.UpdateFundsMoveRequest]{
		Service:    svc,
		EntityName: "funds move",
		MapCreate: func(req *dto.CreateFundsMoveRequest) (*fundsmove.FundsMove, error) {
			return req.ToEntity()
		},
		ShouldPost: func(req *dto.CreateFundsMoveRequest) bool { return req.Post },
		PostAndSave: func(ctx context.Context, doc *fundsmove.FundsMove) error {
			return svc.PostAndSave(ctx, doc)
		},
		MapUpdate: func(req *dto.UpdateFundsMoveRequest, existing *fundsmove.FundsMove) error {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(doc *fundsmove.FundsMove) any { return dto.FromFundsMove(doc) },
		Audit:    audit,
	})
	return &FundsMoveHandler{BaseDocumentHandler: base, svc: svc}
}

// RegisterRoutes attaches funds move routes to the group.
func (h *FundsMoveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

// List handles GET / with funds-move-specific filters.
func (h *FundsMoveHandler) List(c *gin.Context) {
	listFilter := fundsmove.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "-date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Posted = h.ParseBoolQuery(c, "posted")

	if raw := c.Query("kind"); raw != "" {
		kind := fundsmove.Kind(raw)
		listFilter.Kind = &kind
	}
	if raw := c.Query("category"); raw != "" {
		listFilter.Category = &raw
	}
	listFilter.ExcludeExpenses = c.Query("excludeExpenses") == "true"

	var ok bool
	if listFilter.AccountID, ok = h.ParseIDQuery(c, "accountId"); !ok {
		return
	}
	if listFilter.DateFrom, ok = h.ParseTimeQuery(c, "dateFrom"); !ok {
		return
	}
	if listFilter.DateTo, ok = h.ParseTimeQuery(c, "dateTo"); !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), listFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.FundsMoveResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, dto.FromFundsMove(doc))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
