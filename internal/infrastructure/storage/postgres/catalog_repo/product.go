package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/domain/catalogs/product"
	"tradebook/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByBrand retrieves active products of a brand.
func (r *ProductRepo) GetByBrand(ctx context.Context, brand string) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"brand": brand}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("get by brand: %w", err)
	}

	return products, nil
}
