package payment

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

func TestPayment_GenerateMovements_MoneyPayment(t *testing.T) {
	customerID := id.New()
	accountID := id.New()

	// Rs 2000 collected into the account.
	doc := NewPayment(customerID, accountID, 200000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Receivable, 1)
	recv := movements.Receivable[0]
	assert.Equal(t, entity.RecordTypeExpense, recv.RecordType, "payment reduces debt")
	assert.Equal(t, customerID, recv.CustomerID)
	assert.Equal(t, types.MinorUnits(200000), recv.Amount)

	require.Len(t, movements.Funds, 1)
	fund := movements.Funds[0]
	assert.Equal(t, entity.RecordTypeReceipt, fund.RecordType, "money arrives at the account")
	assert.Equal(t, accountID, fund.AccountID)
	assert.Equal(t, types.MinorUnits(200000), fund.Amount)

	assert.Empty(t, movements.Stock)
}

func TestPayment_GenerateMovements_Discount(t *testing.T) {
	doc := NewDiscount(id.New(), 32000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Receivable, 1)
	assert.Equal(t, entity.RecordTypeExpense, movements.Receivable[0].RecordType)
	assert.Empty(t, movements.Funds, "no money moves on a discount")
}

func TestPayment_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid payment", func(t *testing.T) {
		doc := NewPayment(id.New(), id.New(), 200000)
		assert.NoError(t, doc.Validate(ctx))
	})

	t.Run("payment requires account", func(t *testing.T) {
		doc := NewPayment(id.New(), id.Nil(), 200000)
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("discount rejects account", func(t *testing.T) {
		doc := NewDiscount(id.New(), 32000)
		accountID := id.New()
		doc.AccountID = &accountID
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("percent above 100 rejected", func(t *testing.T) {
		doc := NewPercentDiscount(id.New(), 10001)
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		doc := NewPayment(id.New(), id.New(), -100)
		err := doc.Validate(ctx)
		require.Error(t, err)
	})
}

func TestPayment_CanPost_RequiresResolvedAmount(t *testing.T) {
	// A percent discount has no amount until the service resolves it
	// against the balance.
	doc := NewPercentDiscount(id.New(), 1000)
	err := doc.CanPost(context.Background())
	require.Error(t, err)

	doc.Amount = 32000
	doc.RequestedAmount = 32000
	assert.NoError(t, doc.CanPost(context.Background()))
}
