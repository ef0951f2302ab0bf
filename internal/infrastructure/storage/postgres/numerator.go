package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// NumeratorQuerier routes numerator queries through the transaction
// manager, so document numbers allocate inside the caller's transaction
// when one is open.
type NumeratorQuerier struct {
	txManager *TxManager
}

// NewNumeratorQuerier creates a querier for the numerator service.
func NewNumeratorQuerier(txManager *TxManager) *NumeratorQuerier {
	return &NumeratorQuerier{txManager: txManager}
}

// QueryRow executes a query on the active transaction or the pool.
func (q *NumeratorQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}
