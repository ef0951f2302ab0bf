package fundsmove

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

func TestFundsMove_GenerateMovements_TransferConservesMoney(t *testing.T) {
	fromID := id.New()
	toID := id.New()

	// Rs 500 moved between two cash boxes.
	doc := NewTransfer(fromID, toID, 50000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Funds, 2)

	expense := movements.Funds[0]
	assert.Equal(t, entity.RecordTypeExpense, expense.RecordType)
	assert.Equal(t, fromID, expense.AccountID)

	receipt := movements.Funds[1]
	assert.Equal(t, entity.RecordTypeReceipt, receipt.RecordType)
	assert.Equal(t, toID, receipt.AccountID)

	// The pair nets to zero: total money is unchanged.
	assert.Equal(t, types.MinorUnits(0), expense.SignedAmount()+receipt.SignedAmount())

	assert.Empty(t, movements.Receivable)
	assert.Empty(t, movements.Stock)
}

func TestFundsMove_GenerateMovements_Deposit(t *testing.T) {
	toID := id.New()
	doc := NewDeposit(toID, 100000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Funds, 1)
	assert.Equal(t, entity.RecordTypeReceipt, movements.Funds[0].RecordType)
	assert.Equal(t, toID, movements.Funds[0].AccountID)
}

func TestFundsMove_GenerateMovements_Expense(t *testing.T) {
	fromID := id.New()
	doc := NewExpense(fromID, 15000, "fuel")

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Funds, 1)
	assert.Equal(t, entity.RecordTypeExpense, movements.Funds[0].RecordType)
	assert.Equal(t, fromID, movements.Funds[0].AccountID)
	require.NotNil(t, doc.Category)
	assert.Equal(t, "fuel", *doc.Category)
}

func TestFundsMove_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid transfer", func(t *testing.T) {
		doc := NewTransfer(id.New(), id.New(), 50000)
		assert.NoError(t, doc.Validate(ctx))
	})

	t.Run("transfer same accounts rejected", func(t *testing.T) {
		accountID := id.New()
		doc := NewTransfer(accountID, accountID, 50000)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})

	t.Run("withdrawal without source rejected", func(t *testing.T) {
		doc := NewWithdrawal(id.Nil(), 50000)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		doc := NewDeposit(id.New(), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	})

	t.Run("transfer zero amount is an invalid transfer", func(t *testing.T) {
		doc := NewTransfer(id.New(), id.New(), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})
}
