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
	"tradebook/internal/domain"
	"tradebook/pkg/numerator"
)

// Mock objects

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	docs  map[id.ID]*Purchase
	lines map[id.ID][]Line
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:  make(map[id.ID]*Purchase),
		lines: make(map[id.ID][]Line),
	}
}

func (r *memRepo) Create(ctx context.Context, doc *Purchase) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", docID.String())
	}
	return doc, nil
}

func (r *memRepo) GetByNumber(ctx context.Context, number string) (*Purchase, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("purchase", number)
}

func (r *memRepo) GetBySource(ctx context.Context, sourceDocID id.ID) (*Purchase, error) {
	for _, doc := range r.docs {
		if doc.SourceDocID != nil && *doc.SourceDocID == sourceDocID {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("purchase", sourceDocID.String())
}

func (r *memRepo) Update(ctx context.Context, doc *Purchase) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memRepo) DeleteBySource(ctx context.Context, sourceDocID id.ID) error {
	for docID, doc := range r.docs {
		if doc.SourceDocID != nil && *doc.SourceDocID == sourceDocID {
			delete(r.docs, docID)
			delete(r.lines, docID)
		}
	}
	return nil
}

func (r *memRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return r.lines[docID], nil
}

func (r *memRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = lines
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return domain.ListResult[*Purchase]{}, nil
}

func newTestService(repo *memRepo) *Service {
	return NewService(repo, nil, &numerator.MockGenerator{}, stubTxManager{})
}

func TestService_RecordSourced_CardCarriesNoCost(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	sourceID := id.New()
	productID := id.New()

	// The source document priced the goods; 20 units at 260 would be
	// 5200. The record card must not carry that cost.
	lines := []Line{{
		LineID:    id.New(),
		LineNo:    1,
		ProductID: productID,
		Quantity:  types.NewQuantityFromUnits(20),
		UnitPrice: 26000,
		Amount:    520000,
	}}

	require.NoError(t, svc.RecordSourced(ctx, OriginDump, sourceID, "StockMove", time.Now(), lines))

	card, err := repo.GetBySource(ctx, sourceID)
	require.NoError(t, err)

	assert.True(t, card.Posted)
	assert.Equal(t, OriginDump, card.Origin)
	assert.Equal(t, types.MinorUnits(0), card.TotalAmount)
	assert.Equal(t, types.NewQuantityFromUnits(20), card.TotalQuantity)

	require.Len(t, card.Lines, 1)
	assert.Equal(t, productID, card.Lines[0].ProductID)
	assert.Equal(t, types.NewQuantityFromUnits(20), card.Lines[0].Quantity)
	assert.Equal(t, types.MinorUnits(0), card.Lines[0].UnitPrice)
	assert.Equal(t, types.MinorUnits(0), card.Lines[0].Amount)
}

func TestService_RecordSourced_DeleteBySourceRemovesCard(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	sourceID := id.New()
	lines := []Line{{
		LineID:    id.New(),
		LineNo:    1,
		ProductID: id.New(),
		Quantity:  types.NewQuantityFromUnits(5),
	}}

	require.NoError(t, svc.RecordSourced(ctx, OriginPassThrough, sourceID, "Sale", time.Now(), lines))
	require.NoError(t, svc.DeleteBySource(ctx, sourceID))

	_, err := repo.GetBySource(ctx, sourceID)
	assert.Error(t, err)
}
