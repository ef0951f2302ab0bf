package sale

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

func TestSale_AddLine_CalculatesTotals(t *testing.T) {
	doc := NewSale(id.New(), id.New())

	// 20 cases at Rs 260 each.
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)

	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, types.MinorUnits(520000), doc.Lines[0].Amount)
	assert.Equal(t, types.MinorUnits(520000), doc.TotalAmount)
	assert.Equal(t, types.NewQuantityFromUnits(20), doc.TotalQuantity)

	// Fractional quantity: 2.5 cases at Rs 100.
	doc.AddLine(id.New(), types.NewQuantityFromFloat64(2.5), 10000)
	assert.Equal(t, 2, doc.Lines[1].LineNo)
	assert.Equal(t, types.MinorUnits(25000), doc.Lines[1].Amount)
	assert.Equal(t, types.MinorUnits(545000), doc.TotalAmount)
}

func TestSale_GenerateMovements(t *testing.T) {
	customerID := id.New()
	stockPointID := id.New()
	productID := id.New()

	doc := NewSale(customerID, stockPointID)
	doc.AddLine(productID, types.NewQuantityFromUnits(20), 26000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	// Debt goes up by the full amount.
	require.Len(t, movements.Receivable, 1)
	recv := movements.Receivable[0]
	assert.Equal(t, doc.ID, recv.RecorderID)
	assert.Equal(t, "Sale", recv.RecorderType)
	assert.Equal(t, 1, recv.RecorderVersion)
	assert.Equal(t, entity.RecordTypeReceipt, recv.RecordType)
	assert.Equal(t, customerID, recv.CustomerID)
	assert.Equal(t, types.MinorUnits(520000), recv.Amount)

	// Stock leaves the issuing point per line.
	require.Len(t, movements.Stock, 1)
	stk := movements.Stock[0]
	assert.Equal(t, entity.RecordTypeExpense, stk.RecordType)
	assert.Equal(t, stockPointID, stk.StockPointID)
	assert.Equal(t, productID, stk.ProductID)
	assert.Equal(t, types.NewQuantityFromUnits(20), stk.Quantity)

	assert.Empty(t, movements.Funds, "sales never move money")
}

func TestSale_GenerateMovements_DirectSupplySkipsStock(t *testing.T) {
	doc := NewSale(id.New(), id.New())
	doc.DirectSupply = true
	doc.AddLine(id.New(), types.NewQuantityFromUnits(10), 5000)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)

	assert.Len(t, movements.Receivable, 1)
	assert.Empty(t, movements.Stock)
}

func TestSale_GenerateMovements_VersionFollowsRepost(t *testing.T) {
	doc := NewSale(id.New(), id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)
	doc.MarkPosted()

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, movements.Receivable[0].RecorderVersion)
}

func TestSale_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		doc := NewSale(id.New(), id.New())
		doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)
		assert.NoError(t, doc.Validate(ctx))
	})

	t.Run("missing customer", func(t *testing.T) {
		doc := NewSale(id.Nil(), id.New())
		doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("no lines", func(t *testing.T) {
		doc := NewSale(id.New(), id.New())
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		doc := NewSale(id.New(), id.New())
		doc.AddLine(id.New(), 0, 100)
		err := doc.Validate(ctx)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	})
}
