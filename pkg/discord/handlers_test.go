package discord

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/results"
)

func TestRecentBlackjackRounds(t *testing.T) {
	repo := results.NewMemoryRepository()
	b := &Bot{results: repo}

	// Interleave games; slot spins must not surface in blackjack history
	for i := 0; i < 8; i++ {
		game := entities.GameBlackjack
		outcome := "WIN"
		if i%2 == 0 {
			game = entities.GameSlots
			outcome = "NO_MATCH"
		}
		err := repo.SaveRecord(context.Background(), &entities.RoundRecord{
			ID:          fmt.Sprintf("record-%d", i),
			UserID:      "user1",
			GuildID:     "guild1",
			Game:        game,
			Outcome:     outcome,
			MoneyDelta:  1000,
			CompletedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	recent := b.recentBlackjackRounds("user1")
	require.Len(t, recent, 4)
	for _, r := range recent {
		assert.Equal(t, entities.GameBlackjack, r.Game)
	}
}

func TestRecentBlackjackRoundsWithoutArchive(t *testing.T) {
	b := &Bot{}
	assert.Nil(t, b.recentBlackjackRounds("user1"))
}
