package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain/catalogs/stockpoint"
	"tradebook/internal/infrastructure/storage/postgres"
)

const stockPointTable = "cat_stock_points"

// StockPointRepo implements stockpoint.Repository.
type StockPointRepo struct {
	*BaseCatalogRepo[*stockpoint.StockPoint]
}

// NewStockPointRepo creates a new stock point repository.
func NewStockPointRepo(txManager *postgres.TxManager) *StockPointRepo {
	return &StockPointRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*stockpoint.StockPoint](
			txManager,
			stockPointTable,
			postgres.ExtractDBColumns[stockpoint.StockPoint](),
			func() *stockpoint.StockPoint { return &stockpoint.StockPoint{} },
		),
	}
}

// ClearDefault clears the default flag on all stock points.
func (r *StockPointRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(stockPointTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}

// GetDirect retrieves the virtual direct-supply point, if configured.
func (r *StockPointRepo) GetDirect(ctx context.Context) (*stockpoint.StockPoint, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"type": stockpoint.TypeDirect}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sp, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock point", string(stockpoint.TypeDirect))
		}
		return nil, err
	}
	return sp, nil
}
