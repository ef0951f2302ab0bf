package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Mock objects

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeReceivable struct {
	movements []entity.ReceivableMovement
	reversals []int
}

func (f *fakeReceivable) RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeReceivable) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	f.reversals = append(f.reversals, beforeVersion)
	kept := f.movements[:0]
	for _, m := range f.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	f.movements = kept
	return nil
}

type fakeFunds struct {
	movements []entity.FundsMovement
	checkErr  error
	checked   []FundsRequirement
}

func (f *fakeFunds) RecordMovements(ctx context.Context, movements []entity.FundsMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeFunds) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := f.movements[:0]
	for _, m := range f.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	f.movements = kept
	return nil
}

func (f *fakeFunds) CheckAndReserve(ctx context.Context, requirements []FundsRequirement) error {
	f.checked = append(f.checked, requirements...)
	return f.checkErr
}

type fakeStock struct {
	movements []entity.StockMovement
	checkErr  error
	checked   []StockRequirement
}

func (f *fakeStock) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeStock) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := f.movements[:0]
	for _, m := range f.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	f.movements = kept
	return nil
}

func (f *fakeStock) CheckAndReserve(ctx context.Context, requirements []StockRequirement) error {
	f.checked = append(f.checked, requirements...)
	return f.checkErr
}

// testDoc is a minimal Postable: a receivable receipt plus one stock
// expense per configured line.
type testDoc struct {
	entity.Document

	customerID   id.ID
	stockPointID id.ID
	amount       types.MinorUnits
	stockLines   map[id.ID]types.Quantity
}

func newTestDoc(amount types.MinorUnits) *testDoc {
	return &testDoc{
		Document:     entity.NewDocument(),
		customerID:   id.New(),
		stockPointID: id.New(),
		amount:       amount,
		stockLines:   make(map[id.ID]types.Quantity),
	}
}

func (d *testDoc) GetDocumentType() string { return "TestDoc" }

func (d *testDoc) GenerateMovements(ctx context.Context) (*MovementSet, error) {
	movements := NewMovementSet()
	newVersion := d.PostedVersion + 1

	movements.AddReceivable(entity.NewReceivableMovement(
		d.ID, d.GetDocumentType(), newVersion, d.Date,
		entity.RecordTypeReceipt, d.customerID, d.amount,
	))
	for productID, qty := range d.stockLines {
		movements.AddStock(entity.NewStockMovement(
			d.ID, d.GetDocumentType(), newVersion, d.Date,
			entity.RecordTypeExpense, d.stockPointID, productID, qty,
		))
	}
	return movements, nil
}

func newTestEngine() (*Engine, *fakeReceivable, *fakeFunds, *fakeStock, *fakeTxManager) {
	receivable := &fakeReceivable{}
	funds := &fakeFunds{}
	stock := &fakeStock{}
	txm := &fakeTxManager{}
	return NewEngine(receivable, funds, stock, txm), receivable, funds, stock, txm
}

func TestEngine_Post_RecordsMovements(t *testing.T) {
	engine, receivable, _, stock, txm := newTestEngine()
	ctx := context.Background()

	doc := newTestDoc(520000)
	productID := id.New()
	doc.stockLines[productID] = types.NewQuantityFromUnits(20)

	updated := false
	err := engine.Post(ctx, doc, func(ctx context.Context) error {
		updated = true
		return nil
	})
	require.NoError(t, err)

	assert.True(t, doc.Posted)
	assert.Equal(t, 1, doc.PostedVersion)
	assert.True(t, updated)
	assert.Equal(t, 1, txm.calls)

	require.Len(t, receivable.movements, 1)
	assert.Equal(t, doc.ID, receivable.movements[0].RecorderID)
	assert.Equal(t, 1, receivable.movements[0].RecorderVersion)
	assert.Equal(t, types.MinorUnits(520000), receivable.movements[0].Amount)

	require.Len(t, stock.movements, 1)
	assert.Equal(t, types.NewQuantityFromUnits(20), stock.movements[0].Quantity)

	// Expense demand was checked against the stock register.
	require.Len(t, stock.checked, 1)
	assert.Equal(t, productID, stock.checked[0].ProductID)
}

func TestEngine_Post_RepostReplacesPreviousIteration(t *testing.T) {
	engine, receivable, _, _, _ := newTestEngine()
	ctx := context.Background()

	doc := newTestDoc(100000)
	require.NoError(t, engine.Post(ctx, doc, func(ctx context.Context) error { return nil }))

	// Edit the amount and repost.
	doc.amount = 150000
	require.NoError(t, engine.Post(ctx, doc, func(ctx context.Context) error { return nil }))

	assert.Equal(t, 2, doc.PostedVersion)
	require.Len(t, receivable.movements, 1, "old iteration must be reversed")
	assert.Equal(t, types.MinorUnits(150000), receivable.movements[0].Amount)
	assert.Equal(t, 2, receivable.movements[0].RecorderVersion)
}

func TestEngine_Post_AvailabilityFailureAborts(t *testing.T) {
	engine, receivable, _, stock, _ := newTestEngine()
	ctx := context.Background()

	stock.checkErr = apperror.NewInsufficientStock(id.New().String(), 20, 5)

	doc := newTestDoc(520000)
	doc.stockLines[id.New()] = types.NewQuantityFromUnits(20)

	updated := false
	err := engine.Post(ctx, doc, func(ctx context.Context) error {
		updated = true
		return nil
	})

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.False(t, doc.Posted)
	assert.False(t, updated)
	assert.Empty(t, receivable.movements)
	assert.Empty(t, stock.movements)
}

func TestEngine_Unpost_RemovesAllIterations(t *testing.T) {
	engine, receivable, _, stock, _ := newTestEngine()
	ctx := context.Background()

	doc := newTestDoc(100000)
	doc.stockLines[id.New()] = types.NewQuantityFromUnits(3)
	require.NoError(t, engine.Post(ctx, doc, func(ctx context.Context) error { return nil }))
	require.NotEmpty(t, receivable.movements)

	require.NoError(t, engine.Unpost(ctx, doc, func(ctx context.Context) error { return nil }))

	assert.False(t, doc.Posted)
	assert.Empty(t, receivable.movements)
	assert.Empty(t, stock.movements)
}

func TestEngine_Unpost_NotPostedIsNoop(t *testing.T) {
	engine, _, _, _, txm := newTestEngine()

	doc := newTestDoc(100000)
	err := engine.Unpost(context.Background(), doc, func(ctx context.Context) error {
		t.Fatal("updateDoc must not be called")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, txm.calls)
}

func TestAggregateStockExpenses(t *testing.T) {
	docID := id.New()
	pointID := id.New()
	productID := id.New()
	now := time.Now().UTC()

	movements := []entity.StockMovement{
		entity.NewStockMovement(docID, "TestDoc", 1, now, entity.RecordTypeExpense, pointID, productID, types.NewQuantityFromUnits(5)),
		entity.NewStockMovement(docID, "TestDoc", 1, now, entity.RecordTypeExpense, pointID, productID, types.NewQuantityFromUnits(3)),
		// Receipts never consume availability.
		entity.NewStockMovement(docID, "TestDoc", 1, now, entity.RecordTypeReceipt, pointID, productID, types.NewQuantityFromUnits(100)),
	}

	reqs := aggregateStockExpenses(movements)
	require.Len(t, reqs, 1)
	assert.Equal(t, pointID, reqs[0].StockPointID)
	assert.Equal(t, productID, reqs[0].ProductID)
	assert.Equal(t, types.NewQuantityFromUnits(8), reqs[0].Quantity)
}

func TestAggregateFundsExpenses(t *testing.T) {
	docID := id.New()
	accountA := id.New()
	accountB := id.New()
	now := time.Now().UTC()

	movements := []entity.FundsMovement{
		entity.NewFundsMovement(docID, "TestDoc", 1, now, entity.RecordTypeExpense, accountA, 50000),
		entity.NewFundsMovement(docID, "TestDoc", 1, now, entity.RecordTypeReceipt, accountB, 50000),
		entity.NewFundsMovement(docID, "TestDoc", 1, now, entity.RecordTypeExpense, accountA, 25000),
	}

	reqs := aggregateFundsExpenses(movements)
	require.Len(t, reqs, 1)
	assert.Equal(t, accountA, reqs[0].AccountID)
	assert.Equal(t, types.MinorUnits(75000), reqs[0].Amount)
}

func TestMovementSet_CountAndIsEmpty(t *testing.T) {
	set := NewMovementSet()
	assert.True(t, set.IsEmpty())

	set.AddReceivable(entity.ReceivableMovement{})
	set.AddFunds(entity.FundsMovement{})
	set.AddStock(entity.StockMovement{})

	assert.False(t, set.IsEmpty())
	assert.Equal(t, 3, set.Count())
}
