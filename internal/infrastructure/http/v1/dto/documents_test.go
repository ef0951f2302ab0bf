package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/documents/fundsmove"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/documents/stockmove"
)

func strPtr(s string) *string { return &s }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateSaleRequest_ToEntity(t *testing.T) {
	customerID := id.New()
	stockPointID := id.New()
	productID := id.New()

	req := CreateSaleRequest{
		CustomerID:   customerID.String(),
		StockPointID: stockPointID.String(),
		Comment:      "weekly route",
		Lines: []DocumentLineRequest{
			{ProductID: productID.String(), Quantity: types.NewQuantityFromUnits(20), UnitPrice: 26000},
		},
	}

	s, err := req.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, customerID, s.CustomerID)
	assert.Equal(t, stockPointID, s.StockPointID)
	assert.Equal(t, "weekly route", s.Comment)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, types.MinorUnits(520000), s.TotalAmount)
	assert.Equal(t, 1, s.Lines[0].LineNo)
}

func TestCreateSaleRequest_ToEntity_BadIDs(t *testing.T) {
	req := CreateSaleRequest{
		CustomerID:   "not-a-uuid",
		StockPointID: id.New().String(),
		Lines:        []DocumentLineRequest{{ProductID: id.New().String(), Quantity: types.NewQuantityFromUnits(1)}},
	}
	_, err := req.ToEntity()
	assertCode(t, err, apperror.CodeValidation)

	req.CustomerID = id.New().String()
	req.Lines[0].ProductID = "bogus"
	_, err = req.ToEntity()
	assertCode(t, err, apperror.CodeValidation)
}

func TestUpdateSaleRequest_ApplyTo_PartialUpdate(t *testing.T) {
	customerID := id.New()
	s, err := (&CreateSaleRequest{
		CustomerID:   customerID.String(),
		StockPointID: id.New().String(),
		Comment:      "original",
		Lines: []DocumentLineRequest{
			{ProductID: id.New().String(), Quantity: types.NewQuantityFromUnits(5), UnitPrice: 10000},
		},
	}).ToEntity()
	require.NoError(t, err)

	newProduct := id.New()
	upd := UpdateSaleRequest{
		Comment: strPtr("corrected"),
		Lines: []DocumentLineRequest{
			{ProductID: newProduct.String(), Quantity: types.NewQuantityFromUnits(2), UnitPrice: 26000},
		},
	}
	require.NoError(t, upd.ApplyTo(s))

	// Untouched fields survive, lines are replaced wholesale.
	assert.Equal(t, customerID, s.CustomerID)
	assert.Equal(t, "corrected", s.Comment)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, newProduct, s.Lines[0].ProductID)
	assert.Equal(t, types.MinorUnits(52000), s.TotalAmount)
}

func TestCreatePaymentRequest_ToEntity(t *testing.T) {
	customerID := id.New()
	accountID := id.New()

	t.Run("money payment defaults the kind", func(t *testing.T) {
		req := CreatePaymentRequest{
			CustomerID: customerID.String(),
			AccountID:  strPtr(accountID.String()),
			Amount:     200000,
		}
		p, err := req.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, payment.KindPayment, p.Kind)
		require.NotNil(t, p.AccountID)
		assert.Equal(t, accountID, *p.AccountID)
		assert.Equal(t, types.MinorUnits(200000), p.Amount)
	})

	t.Run("payment without account is rejected", func(t *testing.T) {
		req := CreatePaymentRequest{CustomerID: customerID.String(), Amount: 200000}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("percent discount", func(t *testing.T) {
		req := CreatePaymentRequest{
			Kind:       string(payment.KindDiscount),
			CustomerID: customerID.String(),
			Percent:    1000,
		}
		p, err := req.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, payment.KindDiscount, p.Kind)
		assert.True(t, p.IsPercentDiscount())
		assert.Nil(t, p.AccountID, "discounts touch no account")
	})

	t.Run("fixed discount", func(t *testing.T) {
		req := CreatePaymentRequest{
			Kind:       string(payment.KindDiscount),
			CustomerID: customerID.String(),
			Amount:     50000,
		}
		p, err := req.ToEntity()
		require.NoError(t, err)
		assert.False(t, p.IsPercentDiscount())
		assert.Equal(t, types.MinorUnits(50000), p.RequestedAmount)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		req := CreatePaymentRequest{Kind: "refund", CustomerID: customerID.String()}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeValidation)
	})
}

func TestCreateStockMoveRequest_ToEntity(t *testing.T) {
	fromID := id.New()
	toID := id.New()
	productID := id.New()
	lines := []DocumentLineRequest{
		{ProductID: productID.String(), Quantity: types.NewQuantityFromUnits(20), UnitPrice: 26000},
	}

	t.Run("transfer", func(t *testing.T) {
		req := CreateStockMoveRequest{
			Kind:   string(stockmove.KindTransfer),
			FromID: strPtr(fromID.String()),
			ToID:   toID.String(),
			Lines:  lines,
		}
		m, err := req.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, stockmove.KindTransfer, m.Kind)
		require.NotNil(t, m.FromID)
		assert.Equal(t, fromID, *m.FromID)
		assert.Equal(t, toID, m.ToID)
	})

	t.Run("transfer without source", func(t *testing.T) {
		req := CreateStockMoveRequest{
			Kind:  string(stockmove.KindTransfer),
			ToID:  toID.String(),
			Lines: lines,
		}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeInvalidTransfer)
	})

	t.Run("dump has no source", func(t *testing.T) {
		req := CreateStockMoveRequest{
			Kind:  string(stockmove.KindDump),
			ToID:  toID.String(),
			Lines: lines,
		}
		m, err := req.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, stockmove.KindDump, m.Kind)
		assert.Nil(t, m.FromID)
	})

	t.Run("unknown kind", func(t *testing.T) {
		req := CreateStockMoveRequest{Kind: "shuffle", ToID: toID.String(), Lines: lines}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeValidation)
	})
}

func TestCreateFundsMoveRequest_ToEntity(t *testing.T) {
	fromID := id.New()
	toID := id.New()

	t.Run("transfer", func(t *testing.T) {
		req := CreateFundsMoveRequest{
			Kind:   string(fundsmove.KindTransfer),
			FromID: strPtr(fromID.String()),
			ToID:   strPtr(toID.String()),
			Amount: 50000,
		}
		m, err := req.ToEntity()
		require.NoError(t, err)
		assert.Equal(t, fundsmove.KindTransfer, m.Kind)
		require.NotNil(t, m.FromID)
		require.NotNil(t, m.ToID)
		assert.Equal(t, types.MinorUnits(50000), m.Amount)
	})

	t.Run("transfer missing destination", func(t *testing.T) {
		req := CreateFundsMoveRequest{
			Kind:   string(fundsmove.KindTransfer),
			FromID: strPtr(fromID.String()),
			Amount: 50000,
		}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("deposit", func(t *testing.T) {
		req := CreateFundsMoveRequest{
			Kind:   string(fundsmove.KindDeposit),
			ToID:   strPtr(toID.String()),
			Amount: 100000,
		}
		m, err := req.ToEntity()
		require.NoError(t, err)
		require.NotNil(t, m.ToID)
		assert.Nil(t, m.FromID)
	})

	t.Run("expense with category", func(t *testing.T) {
		req := CreateFundsMoveRequest{
			Kind:     string(fundsmove.KindExpense),
			FromID:   strPtr(fromID.String()),
			Amount:   30000,
			Category: strPtr("fuel"),
		}
		m, err := req.ToEntity()
		require.NoError(t, err)
		require.NotNil(t, m.Category)
		assert.Equal(t, "fuel", *m.Category)
	})

	t.Run("bad account id", func(t *testing.T) {
		req := CreateFundsMoveRequest{
			Kind:   string(fundsmove.KindDeposit),
			ToID:   strPtr("nonsense"),
			Amount: 100000,
		}
		_, err := req.ToEntity()
		assertCode(t, err, apperror.CodeValidation)
	})
}

func TestFromPayment_Response(t *testing.T) {
	customerID := id.New()
	accountID := id.New()
	p := payment.NewPayment(customerID, accountID, 200000)
	p.Number = "PM-2026-00001"

	resp := FromPayment(p)

	assert.Equal(t, "PM-2026-00001", resp.Number)
	assert.Equal(t, string(payment.KindPayment), resp.Kind)
	assert.Equal(t, customerID.String(), resp.CustomerID)
	require.NotNil(t, resp.AccountID)
	assert.Equal(t, accountID.String(), *resp.AccountID)
	assert.Equal(t, types.MinorUnits(200000), resp.Amount)
}
