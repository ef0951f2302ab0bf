package sale

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
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/stockpoint"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/numerator"
)

// Mock objects

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	docs  map[id.ID]*Sale
	lines map[id.ID][]SaleLine
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:  make(map[id.ID]*Sale),
		lines: make(map[id.ID][]SaleLine),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *Sale) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale", docID.String())
	}
	return doc, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*Sale, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (r *memRepo) Update(ctx context.Context, doc *Sale) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]SaleLine, error) {
	return r.lines[docID], nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []SaleLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return domain.ListResult[*Sale]{}, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Sale, error) {
	return r.GetByID(ctx, docID)
}

type stubPoints struct {
	types map[id.ID]stockpoint.PointType
}

func (s *stubPoints) GetByID(ctx context.Context, pointID id.ID) (*stockpoint.StockPoint, error) {
	pointType, ok := s.types[pointID]
	if !ok {
		pointType = stockpoint.TypeShop
	}
	sp := stockpoint.NewStockPoint("SP-TEST", "Test Point", pointType)
	sp.ID = pointID
	return sp, nil
}

type stubPurchases struct {
	recorded []purchase.Origin
	deleted  []id.ID
}

func (s *stubPurchases) RecordSourced(ctx context.Context, origin purchase.Origin, sourceDocID id.ID, sourceDocType string, date time.Time, lines []purchase.Line) error {
	s.recorded = append(s.recorded, origin)
	return nil
}

func (s *stubPurchases) DeleteBySource(ctx context.Context, sourceDocID id.ID) error {
	s.deleted = append(s.deleted, sourceDocID)
	return nil
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

type memStockRegister struct {
	movements []entity.StockMovement
	checkErr  error
}

func (m *memStockRegister) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *memStockRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
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

func (m *memStockRegister) CheckAndReserve(ctx context.Context, requirements []posting.StockRequirement) error {
	return m.checkErr
}

type nopFundsRegister struct{}

func (nopFundsRegister) RecordMovements(ctx context.Context, movements []entity.FundsMovement) error {
	return nil
}

func (nopFundsRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	return nil
}

func (nopFundsRegister) CheckAndReserve(ctx context.Context, requirements []posting.FundsRequirement) error {
	return nil
}

type testFixture struct {
	svc        *Service
	repo       *memRepo
	receivable *memReceivableRegister
	stock      *memStockRegister
	points     *stubPoints
	purchases  *stubPurchases
}

func newFixture() *testFixture {
	repo := newMemRepo()
	receivable := &memReceivableRegister{}
	stock := &memStockRegister{}
	points := &stubPoints{types: make(map[id.ID]stockpoint.PointType)}
	purchases := &stubPurchases{}
	txm := stubTxManager{}

	engine := posting.NewEngine(receivable, nopFundsRegister{}, stock, txm)
	svc := NewService(repo, engine, &numerator.MockGenerator{}, txm, points, purchases)

	return &testFixture{
		svc:        svc,
		repo:       repo,
		receivable: receivable,
		stock:      stock,
		points:     points,
		purchases:  purchases,
	}
}

func TestService_PostAndSave_RecordsDebtAndStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customerID := id.New()
	shopID := id.New()

	// Rs 5200 of goods sold on credit out of the shop.
	doc := NewSale(customerID, shopID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.True(t, doc.Posted)
	assert.NotEmpty(t, doc.Number)
	assert.False(t, doc.DirectSupply)

	require.Len(t, f.receivable.movements, 1)
	assert.Equal(t, customerID, f.receivable.movements[0].CustomerID)
	assert.Equal(t, types.MinorUnits(520000), f.receivable.movements[0].Amount)
	assert.Equal(t, entity.RecordTypeReceipt, f.receivable.movements[0].RecordType)

	require.Len(t, f.stock.movements, 1)
	assert.Equal(t, shopID, f.stock.movements[0].StockPointID)
	assert.Equal(t, entity.RecordTypeExpense, f.stock.movements[0].RecordType)

	assert.Empty(t, f.purchases.recorded, "stock-backed sales have no pass-through card")
}

func TestService_PostAndSave_DirectSupplyCreatesPassThroughCard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	directID := id.New()
	f.points.types[directID] = stockpoint.TypeDirect

	doc := NewSale(id.New(), directID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(10), 10000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.True(t, doc.DirectSupply, "resolved from the stock point type")
	assert.Len(t, f.receivable.movements, 1)
	assert.Empty(t, f.stock.movements, "direct supply bypasses stock")

	require.Len(t, f.purchases.recorded, 1)
	assert.Equal(t, purchase.OriginPassThrough, f.purchases.recorded[0])
}

func TestService_PostAndSave_InsufficientStockAborts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.stock.checkErr = apperror.NewInsufficientStock(id.New().String(), 20, 3)

	doc := NewSale(id.New(), id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)

	err := f.svc.PostAndSave(ctx, doc)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.False(t, doc.Posted)
	assert.Empty(t, f.receivable.movements)
}

func TestService_Delete_PostedSaleRestoresDebtAndStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewSale(id.New(), id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))
	require.Len(t, f.receivable.movements, 1)
	require.Len(t, f.stock.movements, 1)

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	assert.Empty(t, f.receivable.movements, "customer debt is restored")
	assert.Empty(t, f.stock.movements, "issued stock is restored")
	assert.NotContains(t, f.repo.docs, doc.ID)
}

func TestService_PostAndSave_RepostReplacesMovements(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewSale(id.New(), id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	// Edit the posted document and post again.
	doc.Lines = doc.Lines[:0]
	doc.AddLine(id.New(), types.NewQuantityFromUnits(5), 26000)
	doc.recalculateTotals()
	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.Equal(t, 2, doc.PostedVersion)
	require.Len(t, f.receivable.movements, 1, "previous iteration is reversed")
	assert.Equal(t, types.MinorUnits(130000), f.receivable.movements[0].Amount)
}
