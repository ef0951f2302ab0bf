package dto

import (
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/account"
	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/domain/catalogs/product"
	"tradebook/internal/domain/catalogs/stockpoint"
)

// --- Customer ---

type CreateCustomerRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name" binding:"required"`
	Phone          *string          `json:"phone"`
	Address        *string          `json:"address"`
	Area           *string          `json:"area"`
	OpeningBalance types.MinorUnits `json:"openingBalance"`
	Comment        *string          `json:"comment"`
	ParentID       *string          `json:"parentId"`
	IsFolder       bool             `json:"isFolder"`
}

// ToEntity converts the request to a Customer.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.Phone = r.Phone
	c.Address = r.Address
	c.Area = r.Area
	c.OpeningBalance = r.OpeningBalance
	c.Comment = r.Comment
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	return c
}

type UpdateCustomerRequest struct {
	Name           *string           `json:"name"`
	Phone          *string           `json:"phone"`
	Address        *string           `json:"address"`
	Area           *string           `json:"area"`
	OpeningBalance *types.MinorUnits `json:"openingBalance"`
	IsActive       *bool             `json:"isActive"`
	Comment        *string           `json:"comment"`
	ParentID       *string           `json:"parentId"`
}

// ApplyTo applies non-nil fields to an existing Customer.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.Area != nil {
		c.Area = r.Area
	}
	if r.OpeningBalance != nil {
		c.OpeningBalance = *r.OpeningBalance
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.Comment != nil {
		c.Comment = r.Comment
	}
	if r.ParentID != nil {
		c.ParentID = r.ParentID
	}
}

type CustomerResponse struct {
	CatalogResponse
	Phone          *string          `json:"phone,omitempty"`
	Address        *string          `json:"address,omitempty"`
	Area           *string          `json:"area,omitempty"`
	OpeningBalance types.MinorUnits `json:"openingBalance"`
	IsActive       bool             `json:"isActive"`
	Comment        *string          `json:"comment,omitempty"`
}

// FromCustomer converts a Customer to response DTO.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Phone:           c.Phone,
		Address:         c.Address,
		Area:            c.Area,
		OpeningBalance:  c.OpeningBalance,
		IsActive:        c.IsActive,
		Comment:         c.Comment,
	}
}

// --- Account ---

type CreateAccountRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	Holder         *string          `json:"holder"`
	OpeningBalance types.MinorUnits `json:"openingBalance"`
	AllowOverdraft *bool            `json:"allowOverdraft"`
	IsDefault      bool             `json:"isDefault"`
	ParentID       *string          `json:"parentId"`
	IsFolder       bool             `json:"isFolder"`
}

func (r *CreateAccountRequest) ToEntity() *account.Account {
	a := account.NewAccount(r.Code, r.Name, account.AccountType(r.Type))
	a.Holder = r.Holder
	a.OpeningBalance = r.OpeningBalance
	if r.AllowOverdraft != nil {
		a.AllowOverdraft = *r.AllowOverdraft
	}
	a.IsDefault = r.IsDefault
	a.ParentID = r.ParentID
	a.IsFolder = r.IsFolder
	return a
}

type UpdateAccountRequest struct {
	Name           *string           `json:"name"`
	Type           *string           `json:"type"`
	Holder         *string           `json:"holder"`
	OpeningBalance *types.MinorUnits `json:"openingBalance"`
	AllowOverdraft *bool             `json:"allowOverdraft"`
	IsActive       *bool             `json:"isActive"`
	IsDefault      *bool             `json:"isDefault"`
	ParentID       *string           `json:"parentId"`
}

func (r *UpdateAccountRequest) ApplyTo(a *account.Account) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Type != nil {
		a.Type = account.AccountType(*r.Type)
	}
	if r.Holder != nil {
		a.Holder = r.Holder
	}
	if r.OpeningBalance != nil {
		a.OpeningBalance = *r.OpeningBalance
	}
	if r.AllowOverdraft != nil {
		a.AllowOverdraft = *r.AllowOverdraft
	}
	if r.IsActive != nil {
		a.IsActive = *r.IsActive
	}
	if r.IsDefault != nil {
		a.IsDefault = *r.IsDefault
	}
	if r.ParentID != nil {
		a.ParentID = r.ParentID
	}
}

type AccountResponse struct {
	CatalogResponse
	Type           string           `json:"type"`
	Holder         *string          `json:"holder,omitempty"`
	OpeningBalance types.MinorUnits `json:"openingBalance"`
	AllowOverdraft bool             `json:"allowOverdraft"`
	IsActive       bool             `json:"isActive"`
	IsDefault      bool             `json:"isDefault"`
}

func FromAccount(a *account.Account) AccountResponse {
	return AccountResponse{
		CatalogResponse: FromCatalog(a.Catalog),
		Type:            string(a.Type),
		Holder:          a.Holder,
		OpeningBalance:  a.OpeningBalance,
		AllowOverdraft:  a.AllowOverdraft,
		IsActive:        a.IsActive,
		IsDefault:       a.IsDefault,
	}
}

// --- StockPoint ---

type CreateStockPointRequest struct {
	Code      string         `json:"code"`
	Name      string         `json:"name" binding:"required"`
	Type      string         `json:"type" binding:"required"`
	Address   *string        `json:"address"`
	Threshold types.Quantity `json:"threshold"`
	IsDefault bool           `json:"isDefault"`
	ParentID  *string        `json:"parentId"`
	IsFolder  bool           `json:"isFolder"`
}

func (r *CreateStockPointRequest) ToEntity() *stockpoint.StockPoint {
	p := stockpoint.NewStockPoint(r.Code, r.Name, stockpoint.PointType(r.Type))
	p.Address = r.Address
	p.Threshold = r.Threshold
	p.IsDefault = r.IsDefault
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	return p
}

type UpdateStockPointRequest struct {
	Name      *string         `json:"name"`
	Type      *string         `json:"type"`
	Address   *string         `json:"address"`
	Threshold *types.Quantity `json:"threshold"`
	IsActive  *bool           `json:"isActive"`
	IsDefault *bool           `json:"isDefault"`
	ParentID  *string         `json:"parentId"`
}

func (r *UpdateStockPointRequest) ApplyTo(p *stockpoint.StockPoint) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = stockpoint.PointType(*r.Type)
	}
	if r.Address != nil {
		p.Address = r.Address
	}
	if r.Threshold != nil {
		p.Threshold = *r.Threshold
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.IsDefault != nil {
		p.IsDefault = *r.IsDefault
	}
	if r.ParentID != nil {
		p.ParentID = r.ParentID
	}
}

type StockPointResponse struct {
	CatalogResponse
	Type      string         `json:"type"`
	Address   *string        `json:"address,omitempty"`
	Threshold types.Quantity `json:"threshold"`
	IsActive  bool           `json:"isActive"`
	IsDefault bool           `json:"isDefault"`
}

func FromStockPoint(p *stockpoint.StockPoint) StockPointResponse {
	return StockPointResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Type:            string(p.Type),
		Address:         p.Address,
		Threshold:       p.Threshold,
		IsActive:        p.IsActive,
		IsDefault:       p.IsDefault,
	}
}

// --- Product ---

type CreateProductRequest struct {
	Code         string           `json:"code"`
	Name         string           `json:"name" binding:"required"`
	Brand        *string          `json:"brand"`
	Unit         string           `json:"unit" binding:"required"`
	UnitsPerPack int              `json:"unitsPerPack"`
	DefaultPrice types.MinorUnits `json:"defaultPrice"`
	ParentID     *string          `json:"parentId"`
	IsFolder     bool             `json:"isFolder"`
}

func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Unit)
	p.Brand = r.Brand
	p.UnitsPerPack = r.UnitsPerPack
	p.DefaultPrice = r.DefaultPrice
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	return p
}

type UpdateProductRequest struct {
	Name         *string           `json:"name"`
	Brand        *string           `json:"brand"`
	Unit         *string           `json:"unit"`
	UnitsPerPack *int              `json:"unitsPerPack"`
	DefaultPrice *types.MinorUnits `json:"defaultPrice"`
	IsActive     *bool             `json:"isActive"`
	ParentID     *string           `json:"parentId"`
}

func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Brand != nil {
		p.Brand = r.Brand
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	if r.UnitsPerPack != nil {
		p.UnitsPerPack = *r.UnitsPerPack
	}
	if r.DefaultPrice != nil {
		p.DefaultPrice = *r.DefaultPrice
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.ParentID != nil {
		p.ParentID = r.ParentID
	}
}

type ProductResponse struct {
	CatalogResponse
	Brand        *string          `json:"brand,omitempty"`
	Unit         string           `json:"unit"`
	UnitsPerPack int              `json:"unitsPerPack"`
	DefaultPrice types.MinorUnits `json:"defaultPrice"`
	IsActive     bool             `json:"isActive"`
}

func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Brand:           p.Brand,
		Unit:            p.Unit,
		UnitsPerPack:    p.UnitsPerPack,
		DefaultPrice:    p.DefaultPrice,
		IsActive:        p.IsActive,
	}
}
