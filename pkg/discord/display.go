package discord

import (
	"fmt"
	"strings"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// numberEmojis renders slot symbols 1..9
var numberEmojis = [entities.SlotSymbolCount]string{
	"1️⃣", "2️⃣", "3️⃣",
	"4️⃣", "5️⃣", "6️⃣",
	"7️⃣", "8️⃣", "9️⃣",
}

func formatCards(cards []*entities.Card) string {
	parts := make([]string, 0, len(cards))
	for _, card := range cards {
		parts = append(parts, card.String())
	}
	return strings.Join(parts, " ")
}

// formatHiddenDealer shows the upcard and a face-down placeholder
func formatHiddenDealer(visible []*entities.Card) string {
	return formatCards(visible) + " 🂠"
}

// formatMoney renders a cent amount as dollars
func formatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// formatSignedMoney always carries an explicit sign, for deltas
func formatSignedMoney(cents int64) string {
	if cents >= 0 {
		return "+" + formatMoney(cents)
	}
	return formatMoney(cents)
}

func formatSymbols(symbols [3]int) string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		parts = append(parts, numberEmojis[s-1])
	}
	return strings.Join(parts, " ")
}
