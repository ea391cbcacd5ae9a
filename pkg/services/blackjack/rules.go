package blackjack

import (
	"strconv"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

const (
	// DealerStandScore is the total at which the dealer stops drawing
	DealerStandScore = 17

	// BlackjackScore is the best possible hand total
	BlackjackScore = 21
)

func GetCardValue(card *entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return 11
	case entities.Jack, entities.Queen, entities.King:
		return 10
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

func IsAce(card *entities.Card) bool {
	return card.Rank == entities.Ace
}

// GetBestScore counts every ace as 11, then demotes aces to 1 one at a
// time while the hand is over 21
func GetBestScore(cards []*entities.Card) int {
	score := 0
	aces := 0

	for _, card := range cards {
		score += GetCardValue(card)
		if IsAce(card) {
			aces++
		}
	}

	for score > BlackjackScore && aces > 0 {
		score -= 10
		aces--
	}

	return score
}

// IsNatural reports a two-card 21
func IsNatural(cards []*entities.Card) bool {
	return len(cards) == 2 && GetBestScore(cards) == BlackjackScore
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []*entities.Card) bool {
	return GetBestScore(cards) > BlackjackScore
}
