package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

func hand(ranks ...entities.Rank) []*entities.Card {
	cards := make([]*entities.Card, 0, len(ranks))
	for _, rank := range ranks {
		cards = append(cards, entities.NewCard(entities.Spades, rank))
	}
	return cards
}

func TestGetBestScore(t *testing.T) {
	tests := []struct {
		name  string
		cards []*entities.Card
		want  int
	}{
		{"two low cards", hand(entities.Two, entities.Three), 5},
		{"face cards count ten", hand(entities.King, entities.Queen), 20},
		{"ace counts eleven when safe", hand(entities.Ace, entities.Six), 17},
		{"ace demotes to avoid bust", hand(entities.Ace, entities.Six, entities.Nine), 16},
		{"two aces one soft", hand(entities.Ace, entities.Six, entities.Ace), 18},
		{"two aces demote together", hand(entities.Ten, entities.Ace, entities.Ace), 12},
		{"pair of aces then ten stays soft-free", hand(entities.Ace, entities.Ace, entities.King), 12},
		{"all aces", hand(entities.Ace, entities.Ace, entities.Ace), 13},
		{"four aces and a seven", hand(entities.Ace, entities.Ace, entities.Ace, entities.Ace, entities.Seven), 11},
		{"natural", hand(entities.Ace, entities.King), 21},
		{"bust", hand(entities.King, entities.Queen, entities.Five), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetBestScore(tt.cards))
		})
	}
}

func TestIsNatural(t *testing.T) {
	assert.True(t, IsNatural(hand(entities.Ace, entities.King)))
	assert.True(t, IsNatural(hand(entities.Ace, entities.Ten)))

	// 21 on three cards is not a natural
	assert.False(t, IsNatural(hand(entities.Seven, entities.Seven, entities.Seven)))
	assert.False(t, IsNatural(hand(entities.Ace, entities.Nine)))
}

func TestIsBust(t *testing.T) {
	assert.False(t, IsBust(hand(entities.King, entities.Queen, entities.Ace)))
	assert.True(t, IsBust(hand(entities.King, entities.Queen, entities.Two)))
}

func TestGetCardValue(t *testing.T) {
	tests := []struct {
		rank entities.Rank
		want int
	}{
		{entities.Ace, 11},
		{entities.Two, 2},
		{entities.Nine, 9},
		{entities.Ten, 10},
		{entities.Jack, 10},
		{entities.Queen, 10},
		{entities.King, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetCardValue(entities.NewCard(entities.Hearts, tt.rank)))
	}
}
