package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txManager,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// GetByArea retrieves active customers in a collection area.
func (r *CustomerRepo) GetByArea(ctx context.Context, area string) ([]*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"area": area}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var customers []*customer.Customer
	if err := pgxscan.Select(ctx, r.Querier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("get by area: %w", err)
	}

	return customers, nil
}
