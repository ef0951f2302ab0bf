package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/domain/catalogs/account"
	"tradebook/internal/infrastructure/storage/postgres"
)

const accountTable = "cat_accounts"

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*account.Account](
			txManager,
			accountTable,
			postgres.ExtractDBColumns[account.Account](),
			func() *account.Account { return &account.Account{} },
		),
	}
}

// ClearDefault clears the default flag on all accounts.
func (r *AccountRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(accountTable).
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
