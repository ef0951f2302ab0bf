package stockmove

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
	docs  map[id.ID]*StockMove
	lines map[id.ID][]StockMoveLine
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:  make(map[id.ID]*StockMove),
		lines: make(map[id.ID][]StockMoveLine),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *StockMove) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*StockMove, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stock_move", docID.String())
	}
	return doc, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*StockMove, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("stock_move", number)
}

func (r *memRepo) Update(ctx context.Context, doc *StockMove) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]StockMoveLine, error) {
	return r.lines[docID], nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []StockMoveLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockMove], error) {
	return domain.ListResult[*StockMove]{}, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, docID id.ID) (*StockMove, error) {
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

type dumpCard struct {
	origin  purchase.Origin
	srcID   id.ID
	srcType string
	lines   []purchase.Line
}

type stubPurchases struct {
	recorded []dumpCard
	deleted  []id.ID
}

func (s *stubPurchases) RecordSourced(ctx context.Context, origin purchase.Origin, sourceDocID id.ID, sourceDocType string, date time.Time, lines []purchase.Line) error {
	s.recorded = append(s.recorded, dumpCard{origin: origin, srcID: sourceDocID, srcType: sourceDocType, lines: lines})
	return nil
}

func (s *stubPurchases) DeleteBySource(ctx context.Context, sourceDocID id.ID) error {
	s.deleted = append(s.deleted, sourceDocID)
	return nil
}

type memStockRegister struct {
	movements []entity.StockMovement
	available map[id.ID]types.Quantity // per stock point, any product
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
	for _, req := range requirements {
		available := m.available[req.StockPointID]
		if available < req.Quantity {
			return apperror.NewInsufficientStock(req.StockPointID.String(), req.Quantity.Float64(), available.Float64())
		}
	}
	return nil
}

type nopReceivableRegister struct{}

func (nopReceivableRegister) RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	return nil
}

func (nopReceivableRegister) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	return nil
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
	svc       *Service
	repo      *memRepo
	stock     *memStockRegister
	points    *stubPoints
	purchases *stubPurchases
}

func newFixture() *testFixture {
	repo := newMemRepo()
	stock := &memStockRegister{available: make(map[id.ID]types.Quantity)}
	points := &stubPoints{types: make(map[id.ID]stockpoint.PointType)}
	purchases := &stubPurchases{}
	txm := stubTxManager{}

	engine := posting.NewEngine(nopReceivableRegister{}, nopFundsRegister{}, stock, txm)
	svc := NewService(repo, engine, &numerator.MockGenerator{}, txm, points, purchases)

	return &testFixture{
		svc:       svc,
		repo:      repo,
		stock:     stock,
		points:    points,
		purchases: purchases,
	}
}

func TestService_PostAndSave_DumpCreatesPurchaseCard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	shop2 := id.New()
	productID := id.New()

	// Supplier pushes 20 unsolicited units into the shop.
	doc := NewDump(shop2)
	doc.AddLine(productID, types.NewQuantityFromUnits(20), 26000)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	assert.True(t, doc.Posted)
	require.Len(t, f.stock.movements, 1)
	assert.Equal(t, entity.RecordTypeReceipt, f.stock.movements[0].RecordType)
	assert.Equal(t, shop2, f.stock.movements[0].StockPointID)
	assert.Equal(t, types.NewQuantityFromUnits(20), f.stock.movements[0].Quantity)

	// Dump purchase card records where the goods came from. The goods
	// cost nothing, so the card carries quantities only.
	require.Len(t, f.purchases.recorded, 1)
	card := f.purchases.recorded[0]
	assert.Equal(t, purchase.OriginDump, card.origin)
	assert.Equal(t, doc.ID, card.srcID)
	assert.Equal(t, "StockMove", card.srcType)
	require.Len(t, card.lines, 1)
	assert.Equal(t, types.NewQuantityFromUnits(20), card.lines[0].Quantity)
	assert.Equal(t, types.MinorUnits(0), card.lines[0].UnitPrice)
	assert.Equal(t, types.MinorUnits(0), card.lines[0].Amount)
}

func TestService_PostAndSave_TransferInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	fromID := id.New()
	toID := id.New()
	f.stock.available[fromID] = types.NewQuantityFromUnits(5)

	doc := NewTransfer(fromID, toID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(10), 0)

	err := f.svc.PostAndSave(ctx, doc)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.False(t, doc.Posted)
	assert.Empty(t, f.stock.movements)
	assert.Empty(t, f.purchases.recorded)
}

func TestService_PostAndSave_TransferMovesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	fromID := id.New()
	toID := id.New()
	f.stock.available[fromID] = types.NewQuantityFromUnits(50)

	doc := NewTransfer(fromID, toID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(10), 0)

	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	require.Len(t, f.stock.movements, 2)
	assert.Empty(t, f.purchases.recorded, "transfers never create purchase cards")
}

func TestService_Create_RejectsDirectPoint(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	directID := id.New()
	f.points.types[directID] = stockpoint.TypeDirect

	doc := NewLoad(directID)
	doc.AddLine(id.New(), types.NewQuantityFromUnits(10), 0)

	err := f.svc.Create(ctx, doc)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_Delete_PostedDumpReversesStockAndCard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewDump(id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(20), 26000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))
	require.Len(t, f.stock.movements, 1)

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	assert.Empty(t, f.stock.movements, "dumped quantity is re-deducted")
	assert.Contains(t, f.purchases.deleted, doc.ID)
	assert.NotContains(t, f.repo.docs, doc.ID)
}

func TestService_Unpost_DumpDeletesCard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := NewDump(id.New())
	doc.AddLine(id.New(), types.NewQuantityFromUnits(5), 1000)
	require.NoError(t, f.svc.PostAndSave(ctx, doc))

	require.NoError(t, f.svc.Unpost(ctx, doc.ID))

	assert.False(t, doc.Posted)
	assert.Empty(t, f.stock.movements)
	assert.Contains(t, f.purchases.deleted, doc.ID)
}
