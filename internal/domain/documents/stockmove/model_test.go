package stockmove

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

func TestStockMove_GenerateMovements_Transfer(t *testing.T) {
	fromID := id.New()
	toID := id.New()
	productID := id.New()

	doc := NewTransfer(fromID, toID)
	doc.AddLine(productID, types.NewQuantityFromUnits(10), 0)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	// One expense at the source, one receipt at the destination.
	require.Len(t, movements.Stock, 2)

	expense := movements.Stock[0]
	assert.Equal(t, entity.RecordTypeExpense, expense.RecordType)
	assert.Equal(t, fromID, expense.StockPointID)

	receipt := movements.Stock[1]
	assert.Equal(t, entity.RecordTypeReceipt, receipt.RecordType)
	assert.Equal(t, toID, receipt.StockPointID)

	// Quantity is conserved across the pair.
	assert.Equal(t, expense.Quantity, receipt.Quantity)
	assert.Equal(t, productID, expense.ProductID)
	assert.Equal(t, productID, receipt.ProductID)

	assert.Empty(t, movements.Receivable)
	assert.Empty(t, movements.Funds)
}

func TestStockMove_GenerateMovements_DumpReceivesOnly(t *testing.T) {
	toID := id.New()
	doc := NewDump(toID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	require.Len(t, movements.Stock, 1)
	assert.Equal(t, entity.RecordTypeReceipt, movements.Stock[0].RecordType)
	assert.Equal(t, toID, movements.Stock[0].StockPointID)
	assert.Equal(t, types.NewQuantityFromUnits(20), movements.Stock[0].Quantity)
}

func TestStockMove_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("transfer same points rejected", func(t *testing.T) {
		pointID := id.New()
		doc := NewTransfer(pointID, pointID)
		doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})

	t.Run("transfer without source rejected", func(t *testing.T) {
		doc := NewTransfer(id.Nil(), id.New())
		doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})

	t.Run("load with source rejected", func(t *testing.T) {
		doc := NewLoad(id.New())
		fromID := id.New()
		doc.FromID = &fromID
		doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("no lines rejected", func(t *testing.T) {
		doc := NewDump(id.New())
		require.Error(t, doc.Validate(ctx))
	})

	t.Run("transfer zero quantity is an invalid transfer", func(t *testing.T) {
		doc := NewTransfer(id.New(), id.New())
		doc.AddLine(id.New(), types.Quantity(0), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidTransfer, appErr.Code)
	})

	t.Run("load zero quantity is an invalid amount", func(t *testing.T) {
		doc := NewLoad(id.New())
		doc.AddLine(id.New(), types.Quantity(0), 0)

		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	})
}
