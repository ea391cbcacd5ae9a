package discord

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/services/blackjack"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
	"github.com/pitboss-bot/pitboss/pkg/services/slots"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{1000, "$10.00"},
		{1550, "$15.50"},
		{-1000, "-$10.00"},
		{21000, "$210.00"},
		{7, "$0.07"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.cents))
	}

	assert.Equal(t, "+$10.00", formatSignedMoney(1000))
	assert.Equal(t, "-$10.00", formatSignedMoney(-1000))
}

func TestFormatCards(t *testing.T) {
	cards := []*entities.Card{
		entities.NewCard(entities.Spades, entities.Ace),
		entities.NewCard(entities.Hearts, entities.King),
	}
	assert.Equal(t, "A♠ K♥", formatCards(cards))
}

func TestRoundEmbedHidesDealerHole(t *testing.T) {
	view := blackjack.RoundView{
		State: blackjack.StatePlayerTurn,
		PlayerHand: []*entities.Card{
			entities.NewCard(entities.Spades, entities.Ten),
			entities.NewCard(entities.Hearts, entities.Nine),
		},
		DealerHand: []*entities.Card{
			entities.NewCard(entities.Clubs, entities.Five),
		},
		PlayerScore: 19,
		DealerScore: 5,
		HideHole:    true,
	}

	embed := createRoundEmbed(view, nil)
	require.Len(t, embed.Fields, 2)
	assert.Contains(t, embed.Fields[0].Name, "showing 5")
	assert.Contains(t, embed.Fields[0].Value, "🂠")
	assert.Equal(t, colorPlaying, embed.Color)
}

func TestRoundEmbedSettlement(t *testing.T) {
	u := entities.NewUser("user1", "guild1")
	u.Money = 11500

	view := blackjack.RoundView{
		State:       blackjack.StateResolved,
		PlayerScore: 21,
		DealerScore: 19,
	}
	settlement := &blackjack.Settlement{
		Outcome: economy.RoundOutcome{Kind: economy.OutcomeBlackjack, Money: 1500},
		Points:  2,
		User:    u,
	}

	embed := createRoundEmbed(view, settlement)
	assert.Equal(t, colorBlackjack, embed.Color)
	assert.Contains(t, embed.Description, "BLACKJACK")
	assert.Contains(t, embed.Description, "+$15.00")
	assert.Nil(t, embed.Footer)

	settlement.SaveFailed = true
	embed = createRoundEmbed(view, settlement)
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "may not have been saved")
}

func TestBlackjackStatsEmbedRecentRounds(t *testing.T) {
	u := entities.NewUser("user1", "guild1")

	// Without history the embed carries only the ledger fields
	embed := createBlackjackStatsEmbed("player", u, 3, nil)
	for _, f := range embed.Fields {
		assert.NotEqual(t, "Recent Rounds", f.Name)
	}

	recent := []*entities.RoundRecord{
		{Game: entities.GameBlackjack, Outcome: "WIN", MoneyDelta: 1000},
		{Game: entities.GameBlackjack, Outcome: "BUST", MoneyDelta: -1000},
	}
	embed = createBlackjackStatsEmbed("player", u, 3, recent)

	last := embed.Fields[len(embed.Fields)-1]
	require.Equal(t, "Recent Rounds", last.Name)
	assert.Contains(t, last.Value, "WIN +$10.00")
	assert.Contains(t, last.Value, "BUST -$10.00")
}

func TestSlotResultEmbed(t *testing.T) {
	u := entities.NewUser("user1", "guild1")
	u.Money = 30000

	result := &slots.SpinResult{
		Symbols:           [3]int{3, 3, 3},
		MatchSymbol:       3,
		MatchCount:        3,
		BetCents:          1000,
		PayoutCents:       6467,
		DisplayMultiplier: 21,
		DisplayTotalCents: 21000,
	}

	embed := createSlotResultEmbed(result, u, false)
	assert.Equal(t, colorWin, embed.Color)
	assert.Contains(t, embed.Fields[1].Value, "TRIPLE 3")
	assert.Contains(t, embed.Fields[1].Value, "21x")
	assert.Contains(t, embed.Fields[1].Value, "$210.00")

	loss := &slots.SpinResult{Symbols: [3]int{1, 2, 5}, BetCents: 1000}
	embed = createSlotResultEmbed(loss, u, false)
	assert.Equal(t, colorLose, embed.Color)
	assert.Contains(t, embed.Fields[1].Value, "lost")
}

func TestSlotBetButtonsCoverAllDenominations(t *testing.T) {
	rows := createSlotBetButtons(false)

	var ids []string
	for _, row := range rows {
		actions, ok := row.(discordgo.ActionsRow)
		require.True(t, ok)
		require.LessOrEqual(t, len(actions.Components), 5, "Discord allows five buttons per row")
		for _, c := range actions.Components {
			button, ok := c.(discordgo.Button)
			require.True(t, ok)
			ids = append(ids, button.CustomID)
		}
	}

	require.Len(t, ids, len(slots.AllowedBets))
	for i, bet := range slots.AllowedBets {
		assert.Equal(t, fmt.Sprintf("slot_%d", bet), ids[i])
	}
}
