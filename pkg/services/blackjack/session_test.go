package blackjack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/results"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
)

func newTestCoordinator(t *testing.T) (*Coordinator, user.Repository, results.Repository) {
	t.Helper()

	userRepo := user.NewMemoryRepository()
	resultsRepo := results.NewMemoryRepository()

	econ, err := economy.NewService(userRepo)
	require.NoError(t, err)

	c, err := NewCoordinator(econ, resultsRepo)
	require.NoError(t, err)
	c.dealerPace = 5 * time.Millisecond
	return c, userRepo, resultsRepo
}

// stackRounds makes the coordinator deal fixed cards: player gets
// ranks[0] and ranks[2], dealer ranks[1] and ranks[3], rest in order
func stackRounds(ranks ...entities.Rank) func(string, string) (*Round, error) {
	return func(userID, guildID string) (*Round, error) {
		suits := []entities.Suit{entities.Spades, entities.Hearts, entities.Diamonds, entities.Clubs}
		cards := make([]*entities.Card, 0, len(ranks))
		for i, rank := range ranks {
			cards = append(cards, entities.NewCard(suits[i%len(suits)], rank))
		}
		return newRoundWithDeck(userID, guildID, entities.NewStackedDeck(cards...))
	}
}

func TestStartRoundExclusivity(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	c.newRound = stackRounds(entities.Ten, entities.Five, entities.Nine, entities.Six)

	_, settlement, err := c.StartRound(context.Background(), "user1", "guild1", nil)
	require.NoError(t, err)
	require.Nil(t, settlement)

	_, _, err = c.StartRound(context.Background(), "user1", "guild1", nil)
	assert.ErrorIs(t, err, ErrAlreadyPlaying)

	// A different user is unaffected
	_, _, err = c.StartRound(context.Background(), "user2", "guild1", nil)
	assert.NoError(t, err)
}

func TestStartRoundInsufficientFunds(t *testing.T) {
	c, userRepo, _ := newTestCoordinator(t)

	broke := entities.NewUser("user1", "guild1")
	broke.Money = StakeCents - 1
	require.NoError(t, userRepo.SaveUser(context.Background(), broke))

	_, _, err := c.StartRound(context.Background(), "user1", "guild1", nil)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
	assert.False(t, c.HasActiveRound("user1", "guild1"))
}

func TestInstantNaturalSettlesImmediately(t *testing.T) {
	c, userRepo, resultsRepo := newTestCoordinator(t)
	c.newRound = stackRounds(entities.Ace, entities.Five, entities.King, entities.Six)

	_, settlement, err := c.StartRound(context.Background(), "user1", "guild1", nil)
	require.NoError(t, err)
	require.NotNil(t, settlement)

	assert.Equal(t, economy.OutcomeBlackjack, settlement.Outcome.Kind)
	assert.Equal(t, int64(2), settlement.Points)
	assert.False(t, settlement.SaveFailed)
	assert.False(t, c.HasActiveRound("user1", "guild1"))

	// Ledger applied exactly once
	u, err := userRepo.GetUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.Equal(t, entities.StartingMoney+blackjackCents, u.Money)
	assert.Equal(t, int64(1), u.Rounds)
	assert.Equal(t, int64(1), u.Blackjacks)
	assert.Equal(t, int64(2), u.Points)

	// Round archived
	records, err := resultsRepo.GetUserRecords(context.Background(), "user1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entities.GameBlackjack, records[0].Game)
	assert.Equal(t, "BLACKJACK", records[0].Outcome)
	assert.Equal(t, blackjackCents, records[0].MoneyDelta)
}

func TestStandRunsDealerAndSettles(t *testing.T) {
	c, userRepo, _ := newTestCoordinator(t)
	// Player 19, dealer 11 drawing 4 then 3 for 18
	c.newRound = stackRounds(entities.Ten, entities.Five, entities.Nine, entities.Six,
		entities.Four, entities.Three)

	events := make(chan Event, 8)
	notify := func(ev Event) { events <- ev }

	_, settlement, err := c.StartRound(context.Background(), "user1", "guild1", notify)
	require.NoError(t, err)
	require.Nil(t, settlement)

	view, err := c.Stand(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.Equal(t, StateDealerTurn, view.State)

	var final *Settlement
	deadline := time.After(2 * time.Second)
	for final == nil {
		select {
		case ev := <-events:
			if ev.Settlement != nil {
				final = ev.Settlement
			}
		case <-deadline:
			t.Fatal("timed out waiting for settlement")
		}
	}

	assert.Equal(t, economy.OutcomeWin, final.Outcome.Kind)
	assert.False(t, c.HasActiveRound("user1", "guild1"))

	u, err := userRepo.GetUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.Equal(t, entities.StartingMoney+winCents, u.Money)
	assert.Equal(t, int64(1), u.Wins)
}

func TestHitBustSettles(t *testing.T) {
	c, userRepo, _ := newTestCoordinator(t)
	c.newRound = stackRounds(entities.Ten, entities.Five, entities.Nine, entities.Six,
		entities.King)

	_, _, err := c.StartRound(context.Background(), "user1", "guild1", nil)
	require.NoError(t, err)

	view, settlement, err := c.Hit(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	require.NotNil(t, settlement)

	assert.Equal(t, StateResolved, view.State)
	assert.Equal(t, economy.OutcomeBust, settlement.Outcome.Kind)
	assert.Equal(t, int64(-1), settlement.Points)
	assert.False(t, c.HasActiveRound("user1", "guild1"))

	u, err := userRepo.GetUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.Equal(t, entities.StartingMoney-StakeCents, u.Money)
}

func TestDecisionTimeoutAbandonsCleanly(t *testing.T) {
	c, userRepo, resultsRepo := newTestCoordinator(t)
	c.decisionTimeout = 20 * time.Millisecond
	c.newRound = stackRounds(entities.Ten, entities.Five, entities.Nine, entities.Six)

	before := entities.NewUser("user1", "guild1")
	require.NoError(t, userRepo.SaveUser(context.Background(), before))

	events := make(chan Event, 1)
	_, _, err := c.StartRound(context.Background(), "user1", "guild1", func(ev Event) { events <- ev })
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.True(t, ev.TimedOut)
		assert.Nil(t, ev.Settlement)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for abandonment")
	}

	// Lock released, ledger untouched
	assert.False(t, c.HasActiveRound("user1", "guild1"))

	after, err := userRepo.GetUser(context.Background(), "user1", "guild1")
	require.NoError(t, err)
	assert.Equal(t, *before, *after)

	records, err := resultsRepo.GetUserRecords(context.Background(), "user1", 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	// User can start a new round right away
	_, _, err = c.StartRound(context.Background(), "user1", "guild1", nil)
	assert.NoError(t, err)
}

func TestEndRoundIsIdempotent(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	c.newRound = stackRounds(entities.Ten, entities.Five, entities.Nine, entities.Six)

	_, _, err := c.StartRound(context.Background(), "user1", "guild1", nil)
	require.NoError(t, err)

	c.EndRound("user1", "guild1")
	c.EndRound("user1", "guild1")

	assert.False(t, c.HasActiveRound("user1", "guild1"))

	_, _, err = c.Hit(context.Background(), "user1", "guild1")
	assert.ErrorIs(t, err, ErrNoActiveRound)
	_, err = c.Stand(context.Background(), "user1", "guild1")
	assert.ErrorIs(t, err, ErrNoActiveRound)
}
