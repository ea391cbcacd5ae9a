package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

func TestMemorySaveAndGetRecords(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Now()

	for i, outcome := range []string{"WIN", "LOSS", "BLACKJACK"} {
		err := repo.SaveRecord(context.Background(), &entities.RoundRecord{
			ID:          string(rune('a' + i)),
			UserID:      "user1",
			GuildID:     "guild1",
			Game:        entities.GameBlackjack,
			Outcome:     outcome,
			CompletedAt: now.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	records, err := repo.GetUserRecords(context.Background(), "user1", 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "BLACKJACK", records[0].Outcome, "newest first")
	assert.Equal(t, "WIN", records[2].Outcome)
}

func TestMemoryGetRecordsLimit(t *testing.T) {
	repo := NewMemoryRepository()

	for i := 0; i < 5; i++ {
		err := repo.SaveRecord(context.Background(), &entities.RoundRecord{
			UserID: "user1",
			Game:   entities.GameSlots,
		})
		require.NoError(t, err)
	}

	records, err := repo.GetUserRecords(context.Background(), "user1", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMemoryGetRecordsUnknownUser(t *testing.T) {
	repo := NewMemoryRepository()

	records, err := repo.GetUserRecords(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
