package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/services/blackjack"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
	"github.com/pitboss-bot/pitboss/pkg/services/slots"
	"github.com/pitboss-bot/pitboss/pkg/services/statistics"
)

// Embed colors
const (
	colorPlaying   = 0x3498db
	colorDealer    = 0x95a5a6
	colorWin       = 0x2ecc71
	colorLose      = 0xe74c3c
	colorBlackjack = 0xf1c40f
)

func outcomeColor(kind economy.OutcomeKind) int {
	switch kind {
	case economy.OutcomeBlackjack:
		return colorBlackjack
	case economy.OutcomeWin:
		return colorWin
	case economy.OutcomeLoss, economy.OutcomeBust:
		return colorLose
	default:
		return colorDealer
	}
}

func outcomeText(kind economy.OutcomeKind) string {
	switch kind {
	case economy.OutcomeBlackjack:
		return "🃏 **BLACKJACK!**"
	case economy.OutcomeWin:
		return "🎉 **You win!**"
	case economy.OutcomeLoss:
		return "💸 **Dealer wins.**"
	case economy.OutcomeBust:
		return "💥 **BUST!**"
	default:
		return "🤝 **Push.**"
	}
}

// createRoundEmbed renders a blackjack round. A non-nil settlement adds
// the result line, the money delta, and the points earned.
func createRoundEmbed(view blackjack.RoundView, settlement *blackjack.Settlement) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎲 Blackjack",
		Color: colorPlaying,
	}

	dealerValue := formatCards(view.DealerHand)
	dealerName := fmt.Sprintf("Dealer — %d", view.DealerScore)
	if view.HideHole {
		dealerValue = formatHiddenDealer(view.DealerHand)
		dealerName = fmt.Sprintf("Dealer — showing %d", view.DealerScore)
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: dealerName, Value: dealerValue, Inline: false},
		{
			Name:   fmt.Sprintf("Your hand — %d", view.PlayerScore),
			Value:  formatCards(view.PlayerHand),
			Inline: false,
		},
	}

	if view.State == blackjack.StateDealerTurn {
		embed.Color = colorDealer
		embed.Description = "Dealer is drawing..."
	}

	if settlement != nil {
		embed.Color = outcomeColor(settlement.Outcome.Kind)
		embed.Description = fmt.Sprintf("%s\n💵 %s · ⭐ %+d points",
			outcomeText(settlement.Outcome.Kind),
			formatSignedMoney(settlement.Outcome.Money),
			settlement.Points)
		if settlement.User != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Balance",
				Value:  formatMoney(settlement.User.Money),
				Inline: true,
			})
		}
		if settlement.SaveFailed {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: "⚠️ Stats may not have been saved",
			}
		}
	}

	return embed
}

// createTimeoutEmbed renders an abandoned round
func createTimeoutEmbed(view blackjack.RoundView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎲 Blackjack",
		Color:       colorDealer,
		Description: "⏱️ Round abandoned: you took too long to decide. No money changed hands.",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   fmt.Sprintf("Your hand — %d", view.PlayerScore),
				Value:  formatCards(view.PlayerHand),
				Inline: false,
			},
		},
	}
}

// createRoundButtons returns the hit/stand row, disabled once the
// player can no longer act
func createRoundButtons(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: "blackjack_hit",
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: "blackjack_stand",
					Disabled: disabled,
				},
			},
		},
	}
}

// createPlayAgainButtons returns the post-round continuation row
func createPlayAgainButtons(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Play Again",
					Style:    discordgo.SuccessButton,
					CustomID: "blackjack_again",
					Disabled: disabled,
				},
			},
		},
	}
}

// createSlotPromptEmbed invites the user to pick a bet
func createSlotPromptEmbed(balance int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎰 Slot Machine",
		Color:       colorPlaying,
		Description: fmt.Sprintf("Pick a bet amount to spin!\n\n💰 **Your Balance:** %s", formatMoney(balance)),
	}
}

// createSlotBetButtons returns the bet denomination rows, five buttons
// per row
func createSlotBetButtons(disabled bool) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for i := 0; i < len(slots.AllowedBets); i += 5 {
		end := i + 5
		if end > len(slots.AllowedBets) {
			end = len(slots.AllowedBets)
		}

		var buttons []discordgo.MessageComponent
		for _, bet := range slots.AllowedBets[i:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    fmt.Sprintf("$%d", bet),
				Style:    discordgo.PrimaryButton,
				CustomID: fmt.Sprintf("slot_%d", bet),
				Disabled: disabled,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// createSlotResultEmbed renders one resolved spin
func createSlotResultEmbed(result *slots.SpinResult, u *entities.User, saveFailed bool) *discordgo.MessageEmbed {
	resultText := "You lost!"
	color := colorLose
	if result.Won() {
		color = colorWin
		kind := "DOUBLE"
		if result.MatchCount == 3 {
			kind = "🎉 TRIPLE"
		} else {
			kind = "⭐ " + kind
		}
		resultText = fmt.Sprintf("%s %d! You won **%gx**!\n💵 %s × %g = %s",
			kind, result.MatchSymbol, result.DisplayMultiplier,
			formatMoney(result.BetCents), result.DisplayMultiplier,
			formatMoney(result.DisplayTotalCents))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎰 Slot Machine",
		Color:       color,
		Description: formatSymbols(result.Symbols),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet", Value: formatMoney(result.BetCents), Inline: true},
			{Name: "Result", Value: resultText, Inline: false},
			{Name: "New Balance", Value: formatMoney(u.Money), Inline: true},
		},
	}
	if saveFailed {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "⚠️ Stats may not have been saved"}
	}
	return embed
}

// createRankEmbed renders a user's level card with their guild rankings
func createRankEmbed(name string, ranks *statistics.UserRanks) *discordgo.MessageEmbed {
	u := ranks.User

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s — Level %d", name, u.Level),
		Color: colorPlaying,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "XP", Value: fmt.Sprintf("%d / %d", u.XP, u.LevelXP), Inline: true},
			{Name: "Total XP", Value: fmt.Sprintf("%d", u.TotalXP), Inline: true},
			{Name: "Weekly XP", Value: fmt.Sprintf("%d", u.WeeklyXP), Inline: true},
			{Name: "Server Rank", Value: formatRank(ranks.LevelRank), Inline: true},
			{Name: "Weekly Rank", Value: formatRank(ranks.WeeklyRank), Inline: true},
		},
	}
	return embed
}

func formatRank(rank int) string {
	if rank <= 0 {
		return "—"
	}
	return fmt.Sprintf("#%d", rank)
}

// createBlackjackStatsEmbed renders a user's blackjack ledger, plus their
// latest archived rounds when an archive is configured
func createBlackjackStatsEmbed(name string, u *entities.User, rank int, recent []*entities.RoundRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎲 Blackjack Stats — %s", name),
		Color: colorBlackjack,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Points", Value: fmt.Sprintf("%d (%s)", u.Points, formatRank(rank)), Inline: true},
			{Name: "Rounds", Value: fmt.Sprintf("%d", u.Rounds), Inline: true},
			{Name: "Record", Value: fmt.Sprintf("%dW / %dL / %dT", u.Wins, u.Losses, u.Ties), Inline: true},
			{Name: "Blackjacks", Value: fmt.Sprintf("%d", u.Blackjacks), Inline: true},
			{Name: "Streak", Value: fmt.Sprintf("%d (best %d)", u.StreakCurrent, u.StreakBest), Inline: true},
			{Name: "Balance", Value: formatMoney(u.Money), Inline: true},
			{Name: "Money Won", Value: formatMoney(u.MoneyGained), Inline: true},
			{Name: "Money Lost", Value: formatMoney(u.MoneyLost), Inline: true},
			{Name: "Net", Value: formatSignedMoney(u.MoneyNet), Inline: true},
		},
	}

	if len(recent) > 0 {
		lines := make([]string, 0, len(recent))
		for _, r := range recent {
			lines = append(lines, fmt.Sprintf("%s %s", r.Outcome, formatSignedMoney(r.MoneyDelta)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Rounds",
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}

// createSlotsStatsEmbed renders a user's slots ledger with the per-symbol
// double and triple counts
func createSlotsStatsEmbed(name string, u *entities.User, rank int) *discordgo.MessageEmbed {
	doubles := ""
	triples := ""
	for i := 0; i < entities.SlotSymbolCount; i++ {
		if u.Doubles[i] > 0 {
			doubles += fmt.Sprintf("%s × %d\n", numberEmojis[i], u.Doubles[i])
		}
		if u.Triples[i] > 0 {
			triples += fmt.Sprintf("%s × %d\n", numberEmojis[i], u.Triples[i])
		}
	}
	if doubles == "" {
		doubles = "None yet"
	}
	if triples == "" {
		triples = "None yet"
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎰 Slots Stats — %s", name),
		Color: colorWin,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Spins", Value: fmt.Sprintf("%d (%s)", u.RoundsSlots, formatRank(rank)), Inline: true},
			{Name: "Total Bet", Value: formatMoney(u.MoneyBetSlots), Inline: true},
			{Name: "Biggest Win", Value: formatMoney(u.MaxWon), Inline: true},
			{Name: "Money Won", Value: formatMoney(u.MoneyEarnedSlots), Inline: true},
			{Name: "Money Spent", Value: formatMoney(u.MoneySpentSlots), Inline: true},
			{Name: "Net", Value: formatSignedMoney(u.MoneyNetSlots), Inline: true},
			{Name: "Doubles", Value: doubles, Inline: true},
			{Name: "Triples", Value: triples, Inline: true},
		},
	}
}

// createLeaderboardEmbed renders one page of a guild ranking
func createLeaderboardEmbed(board *statistics.Leaderboard, names map[string]string) *discordgo.MessageEmbed {
	titles := map[statistics.Board]string{
		statistics.BoardLevels: "🏆 Level Leaderboard",
		statistics.BoardWeekly: "📅 Weekly XP Leaderboard",
		statistics.BoardPoints: "🎲 Blackjack Points Leaderboard",
		statistics.BoardSlots:  "🎰 Slots Winnings Leaderboard",
	}

	description := ""
	base := (board.CurrentPage - 1) * board.UsersPerPage
	for i, u := range board.Users {
		name := names[u.UserID]
		if name == "" {
			name = u.UserID
		}

		var value string
		switch board.Board {
		case statistics.BoardWeekly:
			value = fmt.Sprintf("%d XP", u.WeeklyXP)
		case statistics.BoardPoints:
			value = fmt.Sprintf("%d points", u.Points)
		case statistics.BoardSlots:
			value = formatMoney(u.MoneyEarnedSlots)
		default:
			value = fmt.Sprintf("Level %d · %d XP", u.Level, u.TotalXP)
		}
		description += fmt.Sprintf("**#%d** %s — %s\n", base+i+1, name, value)
	}
	if description == "" {
		description = "Nobody here yet."
	}

	return &discordgo.MessageEmbed{
		Title:       titles[board.Board],
		Color:       colorBlackjack,
		Description: description,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d · %d players", board.CurrentPage, maxInt(board.TotalPages, 1), board.TotalUsers),
		},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
