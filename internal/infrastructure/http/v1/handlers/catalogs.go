package handlers

import (
	"tradebook/internal/domain/catalogs/account"
	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/domain/catalogs/product"
	"tradebook/internal/domain/catalogs/stockpoint"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// CustomerHandler serves the customer catalog.
type CustomerHandler = CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]

// NewCustomerHandler creates a customer catalog handler.
func NewCustomerHandler(svc *customer.Service) *CustomerHandler {
	return NewCatalogHandler(CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service:    svc.CatalogService,
		EntityName: "customer",
		MapCreate: func(req *dto.CreateCustomerRequest) (*customer.Customer, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req *dto.UpdateCustomerRequest, existing *customer.Customer) error {
			req.ApplyTo(existing)
			return nil
		},
		MapToDTO: func(c *customer.Customer) any {
			return dto.FromCustomer(c)
		},
	})
}

// AccountHandler serves the account catalog.
type AccountHandler = CatalogHandler[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]

// NewAccountHandler creates an account catalog handler.
func NewAccountHandler(svc *account.Service) *AccountHandler {
	return NewCatalogHandler(CatalogHandlerConfig[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]{
		Service:    svc.CatalogService,
		EntityName: "account",
		MapCreate: func(req *dto.CreateAccountRequest) (*account.Account, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req *dto.UpdateAccountRequest, existing *account.Account) error {
			req.ApplyTo(existing)
			return nil
		},
		MapToDTO: func(a *account.Account) any {
			return dto.FromAccount(a)
		},
	})
}

// StockPointHandler serves the stock point catalog.
type StockPointHandler = CatalogHandler[*stockpoint.StockPoint, dto.CreateStockPointRequest, dto.UpdateStockPointRequest]

// NewStockPointHandler creates a stock point catalog handler.
func NewStockPointHandler(svc *stockpoint.Service) *StockPointHandler {
	return NewCatalogHandler(CatalogHandlerConfig[*stockpoint.StockPoint, dto.CreateStockPointRequest, dto.UpdateStockPointRequest]{
		Service:    svc.CatalogService,
		EntityName: "stock point",
		MapCreate: func(req *dto.CreateStockPointRequest) (*stockpoint.StockPoint, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req *dto.UpdateStockPointRequest, existing *stockpoint.StockPoint) error {
			req.ApplyTo(existing)
			return nil
		},
		MapToDTO: func(p *stockpoint.StockPoint) any {
			return dto.FromStockPoint(p)
		},
	})
}

// ProductHandler serves the product catalog.
type ProductHandler = CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]

// NewProductHandler creates a product catalog handler.
func NewProductHandler(svc *product.Service) *ProductHandler {
	return NewCatalogHandler(CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    svc.CatalogService,
		EntityName: "product",
		MapCreate: func(req *dto.CreateProductRequest) (*product.Product, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req *dto.UpdateProductRequest, existing *product.Product) error {
			req.ApplyTo(existing)
			return nil
		},
		MapToDTO: func(p *product.Product) any {
			return dto.FromProduct(p)
		},
	})
}
