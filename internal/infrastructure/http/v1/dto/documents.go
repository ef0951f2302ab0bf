package dto

import (
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/documents/fundsmove"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/domain/documents/sale"
	"tradebook/internal/domain/documents/stockmove"
)

// DocumentLineRequest is a line of goods in a document request.
type DocumentLineRequest struct {
	ProductID string           `json:"productId" binding:"required"`
	Quantity  types.Quantity   `json:"quantity" binding:"required"`
	UnitPrice types.MinorUnits `json:"unitPrice"`
}

// DocumentLineResponse is a line of goods in a document response.
type DocumentLineResponse struct {
	LineID    string           `json:"lineId"`
	LineNo    int              `json:"lineNo"`
	ProductID string           `json:"productId"`
	Quantity  types.Quantity   `json:"quantity"`
	UnitPrice types.MinorUnits `json:"unitPrice"`
	Amount    types.MinorUnits `json:"amount"`
}

// --- Sale ---

type CreateSaleRequest struct {
	CustomerID   string                `json:"customerId" binding:"required"`
	StockPointID string                `json:"stockPointId" binding:"required"`
	Date         *time.Time            `json:"date"`
	Comment      string                `json:"comment"`
	Lines        []DocumentLineRequest `json:"lines" binding:"required,min=1"`
	Post         bool                  `json:"post"`
}

// ToEntity converts the request to a Sale.
func (r *CreateSaleRequest) ToEntity() (*sale.Sale, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id").WithDetail("value", r.CustomerID)
	}
	stockPointID, err := id.Parse(r.StockPointID)
	if err != nil {
		return nil, apperror.NewValidation("invalid stock point id").WithDetail("value", r.StockPointID)
	}

	s := sale.NewSale(customerID, stockPointID)
	if r.Date != nil {
		s.Date = *r.Date
	}
	s.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
		}
		s.AddLine(productID, line.Quantity, line.UnitPrice)
	}

	return s, nil
}

type UpdateSaleRequest struct {
	CustomerID   *string               `json:"customerId"`
	StockPointID *string               `json:"stockPointId"`
	Date         *time.Time            `json:"date"`
	Comment      *string               `json:"comment"`
	Lines        []DocumentLineRequest `json:"lines"`
}

// ApplyTo applies non-nil fields to an existing Sale.
func (r *UpdateSaleRequest) ApplyTo(s *sale.Sale) error {
	if r.CustomerID != nil {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return apperror.NewValidation("invalid customer id").WithDetail("value", *r.CustomerID)
		}
		s.CustomerID = customerID
	}
	if r.StockPointID != nil {
		stockPointID, err := id.Parse(*r.StockPointID)
		if err != nil {
			return apperror.NewValidation("invalid stock point id").WithDetail("value", *r.StockPointID)
		}
		s.StockPointID = stockPointID
	}
	if r.Date != nil {
		s.Date = *r.Date
	}
	if r.Comment != nil {
		s.Comment = *r.Comment
	}
	if r.Lines != nil {
		s.Lines = s.Lines[:0]
		for _, line := range r.Lines {
			productID, err := id.Parse(line.ProductID)
			if err != nil {
				return apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
			}
			s.AddLine(productID, line.Quantity, line.UnitPrice)
		}
	}
	return nil
}

type SaleResponse struct {
	DocumentResponse
	CustomerID    string                 `json:"customerId"`
	StockPointID  string                 `json:"stockPointId"`
	DirectSupply  bool                   `json:"directSupply"`
	TotalQuantity types.Quantity         `json:"totalQuantity"`
	TotalAmount   types.MinorUnits       `json:"totalAmount"`
	Lines         []DocumentLineResponse `json:"lines"`
}

// FromSale converts a Sale to response DTO.
func FromSale(s *sale.Sale) SaleResponse {
	lines := make([]DocumentLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, DocumentLineResponse{
			LineID:    l.LineID.String(),
			LineNo:    l.LineNo,
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		})
	}
	return SaleResponse{
		DocumentResponse: FromDocument(s.Document),
		CustomerID:       s.CustomerID.String(),
		StockPointID:     s.StockPointID.String(),
		DirectSupply:     s.DirectSupply,
		TotalQuantity:    s.TotalQuantity,
		TotalAmount:      s.TotalAmount,
		Lines:            lines,
	}
}

// --- Payment ---

type CreatePaymentRequest struct {
	Kind       string           `json:"kind"`
	CustomerID string           `json:"customerId" binding:"required"`
	AccountID  *string          `json:"accountId"`
	Amount     types.MinorUnits `json:"amount"`
	Percent    int              `json:"percent"`
	Date       *time.Time       `json:"date"`
	Comment    string           `json:"comment"`
	Post       bool             `json:"post"`
}

// ToEntity converts the request to a Payment.
// Kind defaults to "payment". Discounts accept either a fixed amount
// or a percent of the outstanding balance (basis points).
func (r *CreatePaymentRequest) ToEntity() (*payment.Payment, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id").WithDetail("value", r.CustomerID)
	}

	var p *payment.Payment
	switch payment.Kind(r.Kind) {
	case payment.KindDiscount:
		if r.Percent > 0 {
			p = payment.NewPercentDiscount(customerID, r.Percent)
		} else {
			p = payment.NewDiscount(customerID, r.Amount)
		}
	case payment.KindPayment, "":
		if r.AccountID == nil {
			return nil, apperror.NewValidation("account is required for payments").
				WithDetail("field", "accountId")
		}
		accountID, err := id.Parse(*r.AccountID)
		if err != nil {
			return nil, apperror.NewValidation("invalid account id").WithDetail("value", *r.AccountID)
		}
		p = payment.NewPayment(customerID, accountID, r.Amount)
	default:
		return nil, apperror.NewValidation("invalid payment kind").WithDetail("value", r.Kind)
	}

	if r.Date != nil {
		p.Date = *r.Date
	}
	p.Comment = r.Comment
	return p, nil
}

type UpdatePaymentRequest struct {
	CustomerID *string           `json:"customerId"`
	AccountID  *string           `json:"accountId"`
	Amount     *types.MinorUnits `json:"amount"`
	Percent    *int              `json:"percent"`
	Date       *time.Time        `json:"date"`
	Comment    *string           `json:"comment"`
}

func (r *UpdatePaymentRequest) ApplyTo(p *payment.Payment) error {
	if r.CustomerID != nil {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return apperror.NewValidation("invalid customer id").WithDetail("value", *r.CustomerID)
		}
		p.CustomerID = customerID
	}
	if r.AccountID != nil {
		accountID, err := id.Parse(*r.AccountID)
		if err != nil {
			return apperror.NewValidation("invalid account id").WithDetail("value", *r.AccountID)
		}
		p.AccountID = &accountID
	}
	if r.Amount != nil {
		p.RequestedAmount = *r.Amount
		if !p.IsPercentDiscount() {
			p.Amount = *r.Amount
		}
	}
	if r.Percent != nil {
		p.Percent = *r.Percent
	}
	if r.Date != nil {
		p.Date = *r.Date
	}
	if r.Comment != nil {
		p.Comment = *r.Comment
	}
	return nil
}

type PaymentResponse struct {
	DocumentResponse
	Kind            string           `json:"kind"`
	CustomerID      string           `json:"customerId"`
	AccountID       *string          `json:"accountId,omitempty"`
	Percent         int              `json:"percent,omitempty"`
	RequestedAmount types.MinorUnits `json:"requestedAmount"`
	Amount          types.MinorUnits `json:"amount"`
}

func FromPayment(p *payment.Payment) PaymentResponse {
	resp := PaymentResponse{
		DocumentResponse: FromDocument(p.Document),
		Kind:             string(p.Kind),
		CustomerID:       p.CustomerID.String(),
		Percent:          p.Percent,
		RequestedAmount:  p.RequestedAmount,
		Amount:           p.Amount,
	}
	if p.AccountID != nil {
		s := p.AccountID.String()
		resp.AccountID = &s
	}
	return resp
}

// --- Purchase ---

type CreatePurchaseRequest struct {
	Origin       string                `json:"origin"`
	SupplierName *string               `json:"supplierName"`
	Date         *time.Time            `json:"date"`
	Comment      string                `json:"comment"`
	Lines        []DocumentLineRequest `json:"lines" binding:"required,min=1"`
	Post         bool                  `json:"post"`
}

func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	origin := purchase.Origin(r.Origin)
	if origin == "" {
		origin = purchase.OriginMonetary
	}

	p := purchase.NewPurchase(origin)
	p.SupplierName = r.SupplierName
	if r.Date != nil {
		p.Date = *r.Date
	}
	p.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
		}
		p.AddLine(productID, line.Quantity, line.UnitPrice)
	}

	return p, nil
}

type UpdatePurchaseRequest struct {
	SupplierName *string               `json:"supplierName"`
	Date         *time.Time            `json:"date"`
	Comment      *string               `json:"comment"`
	Lines        []DocumentLineRequest `json:"lines"`
}

func (r *UpdatePurchaseRequest) ApplyTo(p *purchase.Purchase) error {
	if r.SupplierName != nil {
		p.SupplierName = r.SupplierName
	}
	if r.Date != nil {
		p.Date = *r.Date
	}
	if r.Comment != nil {
		p.Comment = *r.Comment
	}
	if r.Lines != nil {
		p.Lines = p.Lines[:0]
		for _, line := range r.Lines {
			productID, err := id.Parse(line.ProductID)
			if err != nil {
				return apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
			}
			p.AddLine(productID, line.Quantity, line.UnitPrice)
		}
	}
	return nil
}

type PurchaseResponse struct {
	DocumentResponse
	Origin        string                 `json:"origin"`
	SupplierName  *string                `json:"supplierName,omitempty"`
	SourceDocID   *string                `json:"sourceDocId,omitempty"`
	SourceDocType *string                `json:"sourceDocType,omitempty"`
	TotalQuantity types.Quantity         `json:"totalQuantity"`
	TotalAmount   types.MinorUnits       `json:"totalAmount"`
	Lines         []DocumentLineResponse `json:"lines"`
}

func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	lines := make([]DocumentLineResponse, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, DocumentLineResponse{
			LineID:    l.LineID.String(),
			LineNo:    l.LineNo,
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		})
	}
	resp := PurchaseResponse{
		DocumentResponse: FromDocument(p.Document),
		Origin:           string(p.Origin),
		SupplierName:     p.SupplierName,
		SourceDocType:    p.SourceDocType,
		TotalQuantity:    p.TotalQuantity,
		TotalAmount:      p.TotalAmount,
		Lines:            lines,
	}
	if p.SourceDocID != nil {
		s := p.SourceDocID.String()
		resp.SourceDocID = &s
	}
	return resp
}

// --- StockMove ---

type CreateStockMoveRequest struct {
	Kind    string                `json:"kind" binding:"required"`
	FromID  *string               `json:"fromId"`
	ToID    string                `json:"toId" binding:"required"`
	Date    *time.Time            `json:"date"`
	Comment string                `json:"comment"`
	Lines   []DocumentLineRequest `json:"lines" binding:"required,min=1"`
	Post    bool                  `json:"post"`
}

func (r *CreateStockMoveRequest) ToEntity() (*stockmove.StockMove, error) {
	toID, err := id.Parse(r.ToID)
	if err != nil {
		return nil, apperror.NewValidation("invalid destination stock point id").WithDetail("value", r.ToID)
	}

	var m *stockmove.StockMove
	switch stockmove.Kind(r.Kind) {
	case stockmove.KindLoad:
		m = stockmove.NewLoad(toID)
	case stockmove.KindDump:
		m = stockmove.NewDump(toID)
	case stockmove.KindTransfer:
		if r.FromID == nil {
			return nil, apperror.NewInvalidTransfer("transfer requires a source stock point")
		}
		fromID, err := id.Parse(*r.FromID)
		if err != nil {
			return nil, apperror.NewValidation("invalid source stock point id").WithDetail("value", *r.FromID)
		}
		m = stockmove.NewTransfer(fromID, toID)
	default:
		return nil, apperror.NewValidation("invalid stock move kind").WithDetail("value", r.Kind)
	}

	if r.Date != nil {
		m.Date = *r.Date
	}
	m.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
		}
		m.AddLine(productID, line.Quantity, line.UnitPrice)
	}

	return m, nil
}

type UpdateStockMoveRequest struct {
	FromID  *string               `json:"fromId"`
	ToID    *string               `json:"toId"`
	Date    *time.Time            `json:"date"`
	Comment *string               `json:"comment"`
	Lines   []DocumentLineRequest `json:"lines"`
}

func (r *UpdateStockMoveRequest) ApplyTo(m *stockmove.StockMove) error {
	if r.FromID != nil {
		fromID, err := id.Parse(*r.FromID)
		if err != nil {
			return apperror.NewValidation("invalid source stock point id").WithDetail("value", *r.FromID)
		}
		m.FromID = &fromID
	}
	if r.ToID != nil {
		toID, err := id.Parse(*r.ToID)
		if err != nil {
			return apperror.NewValidation("invalid destination stock point id").WithDetail("value", *r.ToID)
		}
		m.ToID = toID
	}
	if r.Date != nil {
		m.Date = *r.Date
	}
	if r.Comment != nil {
		m.Comment = *r.Comment
	}
	if r.Lines != nil {
		m.Lines = m.Lines[:0]
		for _, line := range r.Lines {
			productID, err := id.Parse(line.ProductID)
			if err != nil {
				return apperror.NewValidation("invalid product id").WithDetail("value", line.ProductID)
			}
			m.AddLine(productID, line.Quantity, line.UnitPrice)
		}
	}
	return nil
}

type StockMoveResponse struct {
	DocumentResponse
	Kind          string                 `json:"kind"`
	FromID        *string                `json:"fromId,omitempty"`
	ToID          string                 `json:"toId"`
	TotalQuantity types.Quantity         `json:"totalQuantity"`
	Lines         []DocumentLineResponse `json:"lines"`
}

func FromStockMove(m *stockmove.StockMove) StockMoveResponse {
	lines := make([]DocumentLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, DocumentLineResponse{
			LineID:    l.LineID.String(),
			LineNo:    l.LineNo,
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	resp := StockMoveResponse{
		DocumentResponse: FromDocument(m.Document),
		Kind:             string(m.Kind),
		ToID:             m.ToID.String(),
		TotalQuantity:    m.TotalQuantity,
		Lines:            lines,
	}
	if m.FromID != nil {
		s := m.FromID.String()
		resp.FromID = &s
	}
	return resp
}

// --- FundsMove ---

type CreateFundsMoveRequest struct {
	Kind     string           `json:"kind" binding:"required"`
	FromID   *string          `json:"fromId"`
	ToID     *string          `json:"toId"`
	Amount   types.MinorUnits `json:"amount" binding:"required"`
	Category *string          `json:"category"`
	Date     *time.Time       `json:"date"`
	Comment  string           `json:"comment"`
	Post     bool             `json:"post"`
}

func (r *CreateFundsMoveRequest) ToEntity() (*fundsmove.FundsMove, error) {
	parseAccount := func(raw *string, field string) (id.ID, error) {
		if raw == nil {
			return id.ID{}, apperror.NewValidation(field+" account is required").
				WithDetail("kind", r.Kind)
		}
		accountID, err := id.Parse(*raw)
		if err != nil {
			return id.ID{}, apperror.NewValidation("invalid account id").WithDetail("value", *raw)
		}
		return accountID, nil
	}

	var m *fundsmove.FundsMove
	switch fundsmove.Kind(r.Kind) {
	case fundsmove.KindDeposit:
		toID, err := parseAccount(r.ToID, "destination")
		if err != nil {
			return nil, err
		}
		m = fundsmove.NewDeposit(toID, r.Amount)
	case fundsmove.KindWithdrawal:
		fromID, err := parseAccount(r.FromID, "source")
		if err != nil {
			return nil, err
		}
		m = fundsmove.NewWithdrawal(fromID, r.Amount)
	case fundsmove.KindTransfer:
		fromID, err := parseAccount(r.FromID, "source")
		if err != nil {
			return nil, err
		}
		toID, err := parseAccount(r.ToID, "destination")
		if err != nil {
			return nil, err
		}
		m = fundsmove.NewTransfer(fromID, toID, r.Amount)
	case fundsmove.KindExpense:
		fromID, err := parseAccount(r.FromID, "source")
		if err != nil {
			return nil, err
		}
		category := ""
		if r.Category != nil {
			category = *r.Category
		}
		m = fundsmove.NewExpense(fromID, r.Amount, category)
	default:
		return nil, apperror.NewValidation("invalid funds move kind").WithDetail("value", r.Kind)
	}

	if r.Date != nil {
		m.Date = *r.Date
	}
	m.Comment = r.Comment
	return m, nil
}

type UpdateFundsMoveRequest struct {
	FromID   *string           `json:"fromId"`
	ToID     *string           `json:"toId"`
	Amount   *types.MinorUnits `json:"amount"`
	Category *string           `json:"category"`
	Date     *time.Time        `json:"date"`
	Comment  *string           `json:"comment"`
}

func (r *UpdateFundsMoveRequest) ApplyTo(m *fundsmove.FundsMove) error {
	if r.FromID != nil {
		fromID, err := id.Parse(*r.FromID)
		if err != nil {
			return apperror.NewValidation("invalid account id").WithDetail("value", *r.FromID)
		}
		m.FromID = &fromID
	}
	if r.ToID != nil {
		toID, err := id.Parse(*r.ToID)
		if err != nil {
			return apperror.NewValidation("invalid account id").WithDetail("value", *r.ToID)
		}
		m.ToID = &toID
	}
	if r.Amount != nil {
		m.Amount = *r.Amount
	}
	if r.Category != nil {
		m.Category = r.Category
	}
	if r.Date != nil {
		m.Date = *r.Date
	}
	if r.Comment != nil {
		m.Comment = *r.Comment
	}
	return nil
}

type FundsMoveResponse struct {
	DocumentResponse
	Kind     string           `json:"kind"`
	FromID   *string          `json:"fromId,omitempty"`
	ToID     *string          `json:"toId,omitempty"`
	Amount   types.MinorUnits `json:"amount"`
	Category *string          `json:"category,omitempty"`
}

func FromFundsMove(m *fundsmove.FundsMove) FundsMoveResponse {
	resp := FundsMoveResponse{
		DocumentResponse: FromDocument(m.Document),
		Kind:             string(m.Kind),
		Amount:           m.Amount,
		Category:         m.Category,
	}
	if m.FromID != nil {
		s := m.FromID.String()
		resp.FromID = &s
	}
	if m.ToID != nil {
		s := m.ToID.String()
		resp.ToID = &s
	}
	return resp
}
