package funds

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
	"tradebook/internal/domain/posting"
)

// Mock objects

type stubPolicy struct {
	allow   map[id.ID]bool
	opening map[id.ID]types.MinorUnits
}

func (s *stubPolicy) OverdraftPolicy(ctx context.Context, accountID id.ID) (bool, types.MinorUnits, error) {
	return s.allow[accountID], s.opening[accountID], nil
}

type stubRepo struct {
	Repository

	balances    map[id.ID]types.MinorUnits
	lockedReads []id.ID
	created     []entity.FundsMovement
	deletedFor  []id.ID
}

func newStubRepo() *stubRepo {
	return &stubRepo{balances: make(map[id.ID]types.MinorUnits)}
}

func (s *stubRepo) CreateMovements(ctx context.Context, movements []entity.FundsMovement) error {
	s.created = append(s.created, movements...)
	return nil
}

func (s *stubRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	s.deletedFor = append(s.deletedFor, recorderID)
	return nil
}

func (s *stubRepo) GetBalanceForUpdate(ctx context.Context, accountID id.ID) (entity.FundsBalance, error) {
	s.lockedReads = append(s.lockedReads, accountID)
	return entity.FundsBalance{AccountID: accountID, Amount: s.balances[accountID]}, nil
}

func TestService_CheckAndReserve_OverdraftAlwaysPasses(t *testing.T) {
	accountID := id.New()
	repo := newStubRepo()
	policy := &stubPolicy{
		allow:   map[id.ID]bool{accountID: true},
		opening: map[id.ID]types.MinorUnits{},
	}
	svc := NewService(repo, policy)

	err := svc.CheckAndReserve(context.Background(), []posting.FundsRequirement{
		{AccountID: accountID, Amount: 1_000_000},
	})

	require.NoError(t, err)
	assert.Empty(t, repo.lockedReads, "no balance lock when overdraft is allowed")
}

func TestService_CheckAndReserve_InsufficientFunds(t *testing.T) {
	accountID := id.New()
	repo := newStubRepo()
	repo.balances[accountID] = 30000
	policy := &stubPolicy{
		allow:   map[id.ID]bool{accountID: false},
		opening: map[id.ID]types.MinorUnits{accountID: 10000},
	}
	svc := NewService(repo, policy)

	err := svc.CheckAndReserve(context.Background(), []posting.FundsRequirement{
		{AccountID: accountID, Amount: 50000},
	})

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientFunds, appErr.Code)
	assert.Equal(t, int64(50000), appErr.Details["requested"])
	assert.Equal(t, int64(40000), appErr.Details["available"])
}

func TestService_CheckAndReserve_OpeningBalanceCovers(t *testing.T) {
	accountID := id.New()
	repo := newStubRepo()
	repo.balances[accountID] = 20000
	policy := &stubPolicy{
		allow:   map[id.ID]bool{accountID: false},
		opening: map[id.ID]types.MinorUnits{accountID: 40000},
	}
	svc := NewService(repo, policy)

	err := svc.CheckAndReserve(context.Background(), []posting.FundsRequirement{
		{AccountID: accountID, Amount: 50000},
	})

	require.NoError(t, err)
	require.Len(t, repo.lockedReads, 1)
	assert.Equal(t, accountID, repo.lockedReads[0])
}

func TestService_RecordMovements_RejectsInvalid(t *testing.T) {
	svc := NewService(newStubRepo(), &stubPolicy{allow: map[id.ID]bool{}, opening: map[id.ID]types.MinorUnits{}})
	now := time.Now().UTC()

	t.Run("non-positive amount", func(t *testing.T) {
		movements := []entity.FundsMovement{
			entity.NewFundsMovement(id.New(), "Payment", 1, now, entity.RecordTypeReceipt, id.New(), 0),
		}
		err := svc.RecordMovements(context.Background(), movements)
		require.Error(t, err)
	})

	t.Run("missing recorder", func(t *testing.T) {
		movements := []entity.FundsMovement{
			entity.NewFundsMovement(id.Nil(), "Payment", 1, now, entity.RecordTypeReceipt, id.New(), 100),
		}
		err := svc.RecordMovements(context.Background(), movements)
		require.Error(t, err)
	})

	t.Run("empty set is a no-op", func(t *testing.T) {
		assert.NoError(t, svc.RecordMovements(context.Background(), nil))
	})
}
