package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

func TestPurchase_AddLine_CalculatesTotals(t *testing.T) {
	doc := NewPurchase(OriginMonetary)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(5), 10000)

	assert.Equal(t, types.NewQuantityFromUnits(25), doc.TotalQuantity)
	assert.Equal(t, types.MinorUnits(570000), doc.TotalAmount)
	assert.Equal(t, 2, doc.Lines[1].LineNo)
}

func TestPurchase_GenerateMovements_IsEmpty(t *testing.T) {
	doc := NewPurchase(OriginMonetary)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)

	movements, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)
	assert.True(t, movements.IsEmpty(), "purchase cards are informational only")
}

func TestPurchase_Validate_SourceRequiredForAutoCards(t *testing.T) {
	ctx := context.Background()

	doc := NewPurchase(OriginDump)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)

	err := doc.Validate(ctx)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	doc.SetSource(id.New(), "StockMove", time.Now().UTC())
	assert.NoError(t, doc.Validate(ctx))
}

func TestPurchase_Validate_MonetaryNeedsNoSource(t *testing.T) {
	doc := NewPurchase(OriginMonetary)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(1), 100)
	assert.NoError(t, doc.Validate(context.Background()))
}
