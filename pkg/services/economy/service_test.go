package economy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
	mock_user "github.com/pitboss-bot/pitboss/pkg/repositories/user/mock"
)

func TestGetOrCreateUserCreatesOnFirstContact(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(nil, user.ErrUserNotFound)
	repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)

	svc, err := NewService(repo)
	require.NoError(t, err)

	u, created, err := svc.GetOrCreateUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entities.StartingMoney, u.Money)
}

func TestGetOrCreateUserReturnsExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	existing := entities.NewUser("user1", "guild1")
	existing.Money = 5000
	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(existing, nil)

	svc, err := NewService(repo)
	require.NoError(t, err)

	u, created, err := svc.GetOrCreateUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(5000), u.Money)
}

func TestApplyRoundOutcomeSavesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	existing := entities.NewUser("user1", "guild1")
	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(existing, nil)
	repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *entities.User) error {
			assert.Equal(t, int64(1), u.Wins)
			assert.Equal(t, entities.StartingMoney+1000, u.Money)
			return nil
		}).Times(1)

	svc, err := NewService(repo)
	require.NoError(t, err)

	u, points, err := svc.ApplyRoundOutcome(context.Background(), "user1", "guild1",
		RoundOutcome{Kind: OutcomeWin, Money: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), points)
	assert.Equal(t, entities.StartingMoney+1000, u.Money)
}

func TestApplyRoundOutcomeSaveFailureStillReturnsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	existing := entities.NewUser("user1", "guild1")
	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(existing, nil)
	repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	svc, err := NewService(repo)
	require.NoError(t, err)

	u, points, err := svc.ApplyRoundOutcome(context.Background(), "user1", "guild1",
		RoundOutcome{Kind: OutcomeBlackjack, Money: 1500})

	assert.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, u, "mutated user still returned so the result can be shown")
	assert.Equal(t, int64(2), points)
	assert.Equal(t, entities.StartingMoney+1500, u.Money)
}

func TestApplySpinInsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	broke := entities.NewUser("user1", "guild1")
	broke.Money = 500
	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(broke, nil)
	// No SaveUser call: the spin must not mutate anything

	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.ApplySpin(context.Background(), "user1", "guild1", SpinOutcome{Bet: 1000})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestApplySpinPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)

	existing := entities.NewUser("user1", "guild1")
	repo.EXPECT().GetUser(gomock.Any(), "user1", "guild1").Return(existing, nil)
	repo.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)

	svc, err := NewService(repo)
	require.NoError(t, err)

	u, err := svc.ApplySpin(context.Background(), "user1", "guild1",
		SpinOutcome{Bet: 1000, Payout: 700, Symbol: 2, Count: 2, DisplayTotal: 400})
	require.NoError(t, err)
	assert.Equal(t, entities.StartingMoney-300, u.Money)
	assert.Equal(t, int64(1), u.Doubles[1])
}
