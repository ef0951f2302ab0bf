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
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/numerator"
)

// Mock objects

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	docs map[id.ID]*Payment
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*Payment)}
}

func (r *memRepo) Create(ctx context.Context, doc *Payment) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("payment", docID.String())
	}
	return doc, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*Payment, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("payment", number)
}

func (r *memRepo) Update(ctx context.Context, doc *Payment) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return domain.ListResult[*Payment]{}, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error) {
	return r.GetByID(ctx, docID)
}

type memReceivableRegister struct {
	movements []entity.ReceivableMovement
}

func (m *memReceivableRegister) RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *memReceivableRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := m.movements[:0]
	for _, mv := range m.movements {
		if mv.RecorderID == recorderID && mv.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, mv)
	}
	m.movements = kept
	return nil
}

type memFundsRegister struct {
	movements []entity.FundsMovement
}

func (m *memFundsRegister) RecordMovements(ctx context.Context, movements []entity.FundsMovement) error {
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *memFundsRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := m.movements[:0]
	for _, mv := range m.movements {
		if mv.RecorderID == recorderID && mv.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, mv)
	}
	m.movements = kept
	return nil
}

func (m *memFundsRegister) CheckAndReserve(ctx context.Context, requirements []posting.FundsRequirement) error {
	return nil
}

type memStockRegister struct{}

func (memStockRegister) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	return nil
}

func (memStockRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	return nil
}

func (memStockRegister) CheckAndReserve(ctx context.Context, requirements []posting.StockRequirement) error {
	return nil
}

type stubBalances struct {
	balance types.MinorUnits
}

func (s *stubBalances) GetBalanceForUpdate(ctx context.Context, customerID id.ID) (types.MinorUnits, error) {
	return s.balance, nil
}

type stubCustomers struct {
	opening types.MinorUnits
}

func (s *stubCustomers) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	cust := customer.NewCustomer("CU-001", "Ravi Stores")
	cust.ID = customerID
	cust.OpeningBalance = s.opening
	return cust, nil
}

type testFixture struct {
	svc        *Service
	repo       *memRepo
	receivable *memReceivableRegister
	funds      *memFundsRegister
	balances   *stubBalances
	customers  *stubCustomers
}

func newFixture() *testFixture {
	repo := newMemRepo()
	receivable := &memReceivableRegister{}
	funds := &memFundsRegister{}
	balances := &stubBalances{}
	customers := &stubCustomers{}
	txm := stubTxManager{}

	engine := posting.NewEngine(receivable, funds, memStockRegister{}, txm)
	svc := NewService(repo, engine, &numerator.MockGenerator{}, txm, balances, customers)

	return &testFixture{
		svc:        svc,
		repo:       repo,
		receivable: receivable,
		funds:      funds,
		balances:   balances,
		customers:  customers,
	}
}

func TestService_PostAndSave_MoneyPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	accountID := id.New()
	doc := NewPayment(id.New(), accountID, 200000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.True(t, doc.Posted)
	assert.NotEmpty(t, doc.Number)
	assert.Contains(t, f.repo.docs, doc.ID)

	require.Len(t, f.receivable.movements, 1)
	assert.Equal(t, types.MinorUnits(200000), f.receivable.movements[0].Amount)

	require.Len(t, f.funds.movements, 1)
	assert.Equal(t, accountID, f.funds.movements[0].AccountID)
	assert.Equal(t, entity.RecordTypeReceipt, f.funds.movements[0].RecordType)
}

func TestService_PostAndSave_PercentDiscountResolvesFromBalance(t *testing.T) {
	f := newFixture()
	f.balances.balance = 320000 // Rs 3200 outstanding
	ctx := context.Background()

	// 10% discount in basis points.
	doc := NewPercentDiscount(id.New(), 1000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.Equal(t, types.MinorUnits(32000), doc.Amount, "10 percent of Rs 3200 is Rs 320")
	assert.Equal(t, types.MinorUnits(32000), doc.RequestedAmount)

	require.Len(t, f.receivable.movements, 1)
	assert.Equal(t, types.MinorUnits(32000), f.receivable.movements[0].Amount)
	assert.Empty(t, f.funds.movements)
}

func TestService_PostAndSave_DiscountClampedToCap(t *testing.T) {
	f := newFixture()
	f.balances.balance = 320000
	ctx := context.Background()

	// Rs 1000 requested against a Rs 3200 balance; the cap is 20%.
	doc := NewDiscount(id.New(), 100000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.Equal(t, types.MinorUnits(100000), doc.RequestedAmount)
	assert.Equal(t, types.MinorUnits(64000), doc.Amount, "clamped to 20 percent of the balance")
}

func TestService_PostAndSave_DiscountUsesOpeningBalance(t *testing.T) {
	f := newFixture()
	f.balances.balance = 100000
	f.customers.opening = 220000
	ctx := context.Background()

	doc := NewPercentDiscount(id.New(), 1000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	// Opening balance counts toward what can be discounted.
	assert.Equal(t, types.MinorUnits(32000), doc.Amount)
}

func TestService_PostAndSave_DiscountOnZeroBalanceFails(t *testing.T) {
	f := newFixture()
	f.balances.balance = 0
	ctx := context.Background()

	doc := NewDiscount(id.New(), 10000)
	err := f.svc.PostAndSave(ctx, doc)

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	assert.Empty(t, f.receivable.movements)
}

func TestService_PostAndSave_RepostReadsOldAmountFromStore(t *testing.T) {
	f := newFixture()
	f.balances.balance = 320000
	ctx := context.Background()

	doc := NewDiscount(id.New(), 40000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))
	require.Equal(t, types.MinorUnits(40000), doc.Amount)

	// The first posting reduced the register balance by the applied
	// discount.
	f.balances.balance = 280000

	// An edit arrives as a mapped copy whose monetary fields no longer
	// match what was posted; compensation must come from the stored row.
	edited := *doc
	edited.RequestedAmount = 100000
	edited.Amount = 999999

	require.NoError(t, f.svc.PostAndSave(ctx, &edited))

	// Pre-discount balance is 280000 + the stored 40000; the 20 percent
	// cap on 320000 is 64000.
	assert.Equal(t, types.MinorUnits(64000), edited.Amount)

	require.Len(t, f.receivable.movements, 1, "old movements replaced")
	assert.Equal(t, types.MinorUnits(64000), f.receivable.movements[0].Amount)
	assert.Equal(t, 2, f.receivable.movements[0].RecorderVersion)
}

func TestService_Delete_PostedPaymentRestoresDebt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewPayment(id.New(), id.New(), 200000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))
	require.Len(t, f.receivable.movements, 1)

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	assert.Empty(t, f.receivable.movements, "debt reduction is reversed")
	assert.Empty(t, f.funds.movements, "collected money is reversed")
	assert.NotContains(t, f.repo.docs, doc.ID)
}

func TestService_Update_PostedPaymentRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewPayment(id.New(), id.New(), 200000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	err := f.svc.Update(ctx, doc)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDocumentPosted, appErr.Code)
}
