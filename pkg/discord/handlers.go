package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/services/blackjack"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
	"github.com/pitboss-bot/pitboss/pkg/services/levels"
	"github.com/pitboss-bot/pitboss/pkg/services/slots"
	"github.com/pitboss-bot/pitboss/pkg/services/statistics"
)

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready: %v#%v", s.State.User.Username, s.State.User.Discriminator)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "blackjack",
			Description: "Play a round of blackjack against the house",
		},
		{
			Name:        "slots",
			Description: "Spin the slot machine with buttons to select your bet",
		},
		{
			Name:        "rank",
			Description: "Check your level and server rankings",
		},
		{
			Name:        "blackjackstats",
			Description: "Show your blackjack record",
		},
		{
			Name:        "slotsstats",
			Description: "Show your slot machine record",
		},
		{
			Name:        "leaderboard",
			Description: "Show a server leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "board",
					Description: "Which ranking to show",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Levels", Value: string(statistics.BoardLevels)},
						{Name: "Weekly XP", Value: string(statistics.BoardWeekly)},
						{Name: "Blackjack Points", Value: string(statistics.BoardPoints)},
						{Name: "Slots Winnings", Value: string(statistics.BoardSlots)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
				},
			},
		},
	}

	for _, command := range commands {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, b.guildID, command)
		if err != nil {
			log.Errorf("Error creating command %v: %v", command.Name, err)
		} else {
			log.Printf("Registered command: %v", command.Name)
		}
	}
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "blackjack":
			b.handleBlackjackCommand(s, i)
		case "slots":
			b.handleSlotsCommand(s, i)
		case "rank":
			b.handleRankCommand(s, i)
		case "blackjackstats":
			b.handleBlackjackStatsCommand(s, i)
		case "slotsstats":
			b.handleSlotsStatsCommand(s, i)
		case "leaderboard":
			b.handleLeaderboardCommand(s, i)
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case customID == "blackjack_hit" || customID == "blackjack_stand":
			b.handleBlackjackAction(s, i, customID)
		case customID == "blackjack_again":
			b.handlePlayAgain(s, i)
		case strings.HasPrefix(customID, "slot_"):
			bet, err := strconv.ParseInt(strings.TrimPrefix(customID, "slot_"), 10, 64)
			if err != nil {
				log.Errorf("Bad slot bet custom ID %q: %v", customID, err)
				return
			}
			b.handleSlotBet(s, i, bet)
		default:
			log.Printf("Unknown component ID: %s", customID)
		}
	}
}

// interactionUser returns the invoking user for guild or DM interactions
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// displayName prefers the guild nickname over the account name
func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	return interactionUser(i).Username
}

// respondEphemeral sends a private reply only the invoker can see
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending ephemeral response: %v", err)
	}
}

// followupEphemeral sends a private followup after an acknowledged interaction
func followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending ephemeral followup: %v", err)
	}
}

// editInteraction replaces the interaction's message content
func editInteraction(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		log.Errorf("Error editing interaction response: %v", err)
	}
}

// --- Blackjack ---

func (b *Bot) handleBlackjackCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID
	guildID := i.GuildID

	b.startBlackjackRound(s, i, userID, guildID, false)
}

// startBlackjackRound starts a round and renders it into the
// interaction's message. Used for both /blackjack and Play Again.
func (b *Bot) startBlackjackRound(s *discordgo.Session, i *discordgo.InteractionCreate, userID, guildID string, edit bool) {
	notify := func(ev blackjack.Event) {
		b.handleRoundEvent(s, i, userID, guildID, ev)
	}

	view, settlement, err := b.coordinator.StartRound(context.Background(), userID, guildID, notify)
	if err != nil {
		content := "Something went wrong starting the round."
		switch {
		case errors.Is(err, blackjack.ErrAlreadyPlaying):
			content = "❌ You already have a round in progress. Finish it first!"
		case errors.Is(err, economy.ErrInsufficientFunds):
			content = fmt.Sprintf("❌ You need at least %s to play blackjack.", formatMoney(blackjack.StakeCents))
		default:
			log.Errorf("Error starting blackjack round for %s: %v", userID, err)
		}
		if edit {
			followupEphemeral(s, i, content)
		} else {
			respondEphemeral(s, i, content)
		}
		return
	}

	embed := createRoundEmbed(view, settlement)
	components := createRoundButtons(false)
	if settlement != nil {
		components = createPlayAgainButtons(false)
	}

	if edit {
		editInteraction(s, i.Interaction, embed, components)
	} else {
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
			},
		})
		if err != nil {
			log.Errorf("Error responding to blackjack command: %v", err)
			b.coordinator.EndRound(userID, guildID)
			return
		}
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.Errorf("Error fetching blackjack round message: %v", err)
		return
	}

	if settlement != nil {
		b.trackPlayAgain(s, msg, userID, guildID)
		return
	}
	// Owner entry outlives the decision timeout slightly; the timeout
	// event clears the buttons either way
	b.trackMessage(b.roundOwners, msg.ID, userID, guildID, blackjack.DefaultDecisionTimeout+playAgainWindow, nil)
}

// handleRoundEvent renders async round progress: dealer draws, the
// final settlement, or a timeout
func (b *Bot) handleRoundEvent(s *discordgo.Session, i *discordgo.InteractionCreate, userID, guildID string, ev blackjack.Event) {
	switch {
	case ev.TimedOut:
		editInteraction(s, i.Interaction, createTimeoutEmbed(ev.View), []discordgo.MessageComponent{})
		if msg, err := s.InteractionResponse(i.Interaction); err == nil {
			b.untrackMessage(b.roundOwners, msg.ID)
		}

	case ev.Settlement != nil:
		editInteraction(s, i.Interaction, createRoundEmbed(ev.View, ev.Settlement), createPlayAgainButtons(false))
		if msg, err := s.InteractionResponse(i.Interaction); err == nil {
			b.untrackMessage(b.roundOwners, msg.ID)
			b.trackPlayAgain(s, msg, userID, guildID)
		}

	default:
		editInteraction(s, i.Interaction, createRoundEmbed(ev.View, nil), createRoundButtons(true))
	}
}

// trackPlayAgain arms the continuation window on a settled round's message
func (b *Bot) trackPlayAgain(s *discordgo.Session, msg *discordgo.Message, userID, guildID string) {
	channelID := msg.ChannelID
	messageID := msg.ID
	b.trackMessage(b.roundOwners, messageID, userID, guildID, playAgainWindow, func() {
		disabled := createPlayAgainButtons(true)
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         messageID,
			Channel:    channelID,
			Components: &disabled,
		})
		if err != nil {
			log.Errorf("Error disabling play-again button: %v", err)
		}
	})
}

func (b *Bot) handleBlackjackAction(s *discordgo.Session, i *discordgo.InteractionCreate, action string) {
	ms, ok := b.ownerOf(b.roundOwners, i.Message.ID)
	if !ok {
		respondEphemeral(s, i, "❌ This round is over.")
		return
	}

	presser := interactionUser(i).ID
	if presser != ms.userID {
		respondEphemeral(s, i, "❌ This isn't your game!")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error acknowledging interaction: %v", err)
		return
	}

	ctx := context.Background()
	switch action {
	case "blackjack_hit":
		view, settlement, err := b.coordinator.Hit(ctx, ms.userID, ms.guildID)
		if err != nil {
			b.handleActionError(s, i, err)
			return
		}
		if settlement != nil {
			editInteraction(s, i.Interaction, createRoundEmbed(view, settlement), createPlayAgainButtons(false))
			b.untrackMessage(b.roundOwners, i.Message.ID)
			b.trackPlayAgain(s, i.Message, ms.userID, ms.guildID)
		} else {
			editInteraction(s, i.Interaction, createRoundEmbed(view, nil), createRoundButtons(false))
		}

	case "blackjack_stand":
		view, err := b.coordinator.Stand(ctx, ms.userID, ms.guildID)
		if err != nil {
			b.handleActionError(s, i, err)
			return
		}
		editInteraction(s, i.Interaction, createRoundEmbed(view, nil), createRoundButtons(true))
	}
}

func (b *Bot) handleActionError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if errors.Is(err, blackjack.ErrNoActiveRound) || errors.Is(err, blackjack.ErrRoundResolved) {
		followupEphemeral(s, i, "❌ That round is already over.")
		return
	}
	log.Errorf("Error handling blackjack action: %v", err)
	followupEphemeral(s, i, "Something went wrong. Try again.")
}

func (b *Bot) handlePlayAgain(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ms, ok := b.ownerOf(b.roundOwners, i.Message.ID)
	if !ok {
		respondEphemeral(s, i, "❌ The table has closed. Start a new round with /blackjack.")
		return
	}

	presser := interactionUser(i).ID
	if presser != ms.userID {
		respondEphemeral(s, i, "❌ This isn't your game!")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error acknowledging interaction: %v", err)
		return
	}

	b.untrackMessage(b.roundOwners, i.Message.ID)
	b.startBlackjackRound(s, i, ms.userID, ms.guildID, true)
}

// --- Slots ---

func (b *Bot) handleSlotsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID
	guildID := i.GuildID

	balance, err := b.economy.Balance(context.Background(), userID, guildID)
	if err != nil {
		log.Errorf("Error getting balance for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{createSlotPromptEmbed(balance)},
			Components: createSlotBetButtons(false),
		},
	})
	if err != nil {
		log.Errorf("Error responding to slots command: %v", err)
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.Errorf("Error fetching slots message: %v", err)
		return
	}

	channelID := msg.ChannelID
	messageID := msg.ID
	b.trackMessage(b.slotMachines, messageID, userID, guildID, slotWindow, func() {
		disabled := createSlotBetButtons(true)
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         messageID,
			Channel:    channelID,
			Components: &disabled,
		})
		if err != nil {
			log.Errorf("Error disabling slot buttons: %v", err)
		}
	})
}

func (b *Bot) handleSlotBet(s *discordgo.Session, i *discordgo.InteractionCreate, bet int64) {
	ms, ok := b.ownerOf(b.slotMachines, i.Message.ID)
	if !ok {
		respondEphemeral(s, i, "❌ This slot machine has shut down. Start a new one with /slots.")
		return
	}

	presser := interactionUser(i).ID
	if presser != ms.userID {
		respondEphemeral(s, i, "❌ This isn't your slot machine!")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Error acknowledging interaction: %v", err)
		return
	}

	result, err := b.machine.Resolve(bet)
	if err != nil {
		if errors.Is(err, slots.ErrInvalidBet) {
			followupEphemeral(s, i, "❌ That bet isn't allowed.")
			return
		}
		log.Errorf("Error resolving spin: %v", err)
		followupEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	u, err := b.economy.ApplySpin(context.Background(), ms.userID, ms.guildID, result.Outcome())
	saveFailed := false
	if err != nil {
		switch {
		case errors.Is(err, economy.ErrInsufficientFunds):
			followupEphemeral(s, i, "❌ You don't have enough money for that bet.")
			return
		case errors.Is(err, economy.ErrPersistence):
			saveFailed = true
		default:
			log.Errorf("Error applying spin for %s: %v", ms.userID, err)
			followupEphemeral(s, i, "Something went wrong. Try again.")
			return
		}
	}

	b.archiveSpin(ms.userID, ms.guildID, result)

	// Keep the bet buttons live so the user can spin again within the window
	editInteraction(s, i.Interaction, createSlotResultEmbed(result, u, saveFailed), createSlotBetButtons(false))
}

// archiveSpin records a spin in the results archive, if one is configured.
// Archive failures are logged and never block the game.
func (b *Bot) archiveSpin(userID, guildID string, result *slots.SpinResult) {
	if b.results == nil {
		return
	}

	outcome := "NO_MATCH"
	if result.MatchCount == 3 {
		outcome = fmt.Sprintf("TRIPLE_%d", result.MatchSymbol)
	} else if result.MatchCount == 2 {
		outcome = fmt.Sprintf("DOUBLE_%d", result.MatchSymbol)
	}

	record := &entities.RoundRecord{
		ID:          uuid.New().String(),
		UserID:      userID,
		GuildID:     guildID,
		Game:        entities.GameSlots,
		Outcome:     outcome,
		MoneyDelta:  result.PayoutCents - result.BetCents,
		CompletedAt: time.Now(),
	}
	if err := b.results.SaveRecord(context.Background(), record); err != nil {
		log.Warnf("Error archiving spin for %s: %v", userID, err)
	}
}

// --- Stats commands ---

func (b *Bot) handleRankCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID

	ranks, err := b.stats.GetUserRanks(context.Background(), userID, i.GuildID)
	if err != nil {
		if errors.Is(err, statistics.ErrNoStats) {
			respondEphemeral(s, i, "❌ You don't have any stats yet. Start chatting!")
			return
		}
		log.Errorf("Error getting ranks for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	b.respondEmbed(s, i, createRankEmbed(displayName(i), ranks))
}

func (b *Bot) handleBlackjackStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID

	ranks, err := b.stats.GetUserRanks(context.Background(), userID, i.GuildID)
	if err != nil {
		if errors.Is(err, statistics.ErrNoStats) {
			respondEphemeral(s, i, "❌ You haven't played blackjack yet. Try /blackjack!")
			return
		}
		log.Errorf("Error getting stats for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	b.respondEmbed(s, i, createBlackjackStatsEmbed(displayName(i), ranks.User, ranks.PointsRank, b.recentBlackjackRounds(userID)))
}

const recentRoundsShown = 5

// recentBlackjackRounds pulls the user's latest archived blackjack rounds.
// With no archive configured, or on a read failure, the history section is
// simply omitted.
func (b *Bot) recentBlackjackRounds(userID string) []*entities.RoundRecord {
	if b.results == nil {
		return nil
	}

	// The archive mixes games, so over-fetch and filter
	records, err := b.results.GetUserRecords(context.Background(), userID, 4*recentRoundsShown)
	if err != nil {
		log.Warnf("Error reading round archive for %s: %v", userID, err)
		return nil
	}

	recent := make([]*entities.RoundRecord, 0, recentRoundsShown)
	for _, r := range records {
		if r.Game != entities.GameBlackjack {
			continue
		}
		recent = append(recent, r)
		if len(recent) == recentRoundsShown {
			break
		}
	}
	return recent
}

func (b *Bot) handleSlotsStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID

	ranks, err := b.stats.GetUserRanks(context.Background(), userID, i.GuildID)
	if err != nil {
		if errors.Is(err, statistics.ErrNoStats) {
			respondEphemeral(s, i, "❌ You haven't spun the slots yet. Try /slots!")
			return
		}
		log.Errorf("Error getting stats for %s: %v", userID, err)
		respondEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	b.respondEmbed(s, i, createSlotsStatsEmbed(displayName(i), ranks.User, ranks.SlotsRank))
}

func (b *Bot) handleLeaderboardCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	board := statistics.BoardLevels
	page := 1
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "board":
			board = statistics.Board(opt.StringValue())
		case "page":
			page = int(opt.IntValue())
		}
	}

	leaderboard, err := b.stats.GetLeaderboard(context.Background(), i.GuildID, board, page, 10)
	if err != nil {
		log.Errorf("Error getting leaderboard: %v", err)
		respondEphemeral(s, i, "Something went wrong. Try again.")
		return
	}

	names := make(map[string]string, len(leaderboard.Users))
	for _, u := range leaderboard.Users {
		member, err := s.GuildMember(i.GuildID, u.UserID)
		if err != nil {
			continue
		}
		if member.Nick != "" {
			names[u.UserID] = member.Nick
		} else if member.User != nil {
			names[u.UserID] = member.User.Username
		}
	}

	b.respondEmbed(s, i, createLeaderboardEmbed(leaderboard, names))
}

func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

// --- Passive XP ---

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	multiplier := b.xpMultiplier(s, m.GuildID, m.Author.ID)

	result, err := b.levels.HandleMessage(context.Background(), m.Author.ID, m.GuildID, multiplier)
	if err != nil {
		log.Errorf("Error handling message XP for %s: %v", m.Author.ID, err)
		return
	}

	if result.LeveledUp {
		_, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("🎉 GG <@%s>, you reached **level %d**!", m.Author.ID, result.User.Level))
		if err != nil {
			log.Errorf("Error sending level-up message: %v", err)
		}
	}
}

// xpMultiplier computes the member's XP multiplier from their roles.
// Boosting and Twitch subscriber tiers stack additively on the 1.0 base.
func (b *Bot) xpMultiplier(s *discordgo.Session, guildID, userID string) float64 {
	multiplier := 1.0

	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
		if err != nil {
			return multiplier
		}
	}

	if member.PremiumSince != nil {
		multiplier += levels.BoosterBonus
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return multiplier
	}

	memberRoles := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		memberRoles[id] = true
	}
	for _, role := range guild.Roles {
		if bonus, ok := levels.TwitchTierBonuses[role.Name]; ok && memberRoles[role.ID] {
			multiplier += bonus
		}
	}

	return multiplier
}
