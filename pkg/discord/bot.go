package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pitboss-bot/pitboss/pkg/repositories/results"
	"github.com/pitboss-bot/pitboss/pkg/services/blackjack"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
	"github.com/pitboss-bot/pitboss/pkg/services/levels"
	"github.com/pitboss-bot/pitboss/pkg/services/slots"
	"github.com/pitboss-bot/pitboss/pkg/services/statistics"
)

const (
	// playAgainWindow is how long the continuation button stays live
	// after a round settles
	playAgainWindow = 60 * time.Second

	// slotWindow is how long the bet buttons stay live on a slot prompt
	slotWindow = 30 * time.Second
)

// messageSession ties an interactive message to the user who owns it
type messageSession struct {
	userID  string
	guildID string
	expiry  *time.Timer
}

// Bot is the Discord front end. It owns no game state of its own; all
// round and ledger state lives in the services it routes to.
type Bot struct {
	session *discordgo.Session
	token   string
	guildID string

	coordinator *blackjack.Coordinator
	economy     *economy.Service
	machine     *slots.Machine
	levels      *levels.Service
	stats       *statistics.Service
	results     results.Repository // optional spin archive

	// Maps interactive messages to their owners so button presses by
	// other users can be rejected
	mu           sync.Mutex
	roundOwners  map[string]*messageSession // blackjack message ID -> owner
	slotMachines map[string]*messageSession // slot prompt message ID -> owner
}

// NewBot creates a new bot wired to the given services. The results
// repository archives slot spins and may be nil.
func NewBot(token, guildID string, coordinator *blackjack.Coordinator, econ *economy.Service, machine *slots.Machine, lvls *levels.Service, stats *statistics.Service, resultsRepo results.Repository) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	bot := &Bot{
		session:      session,
		token:        token,
		guildID:      guildID,
		coordinator:  coordinator,
		economy:      econ,
		machine:      machine,
		levels:       lvls,
		stats:        stats,
		results:      resultsRepo,
		roundOwners:  make(map[string]*messageSession),
		slotMachines: make(map[string]*messageSession),
	}

	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleInteractions)
	session.AddHandler(bot.handleMessageCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return bot, nil
}

// Start opens the websocket connection to Discord
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the bot and closes the Discord connection
func (b *Bot) Stop() error {
	b.mu.Lock()
	for id, ms := range b.roundOwners {
		ms.expiry.Stop()
		delete(b.roundOwners, id)
	}
	for id, ms := range b.slotMachines {
		ms.expiry.Stop()
		delete(b.slotMachines, id)
	}
	b.mu.Unlock()

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

// trackMessage registers an interactive message's owner with an expiry
// callback that fires when its window closes
func (b *Bot) trackMessage(owners map[string]*messageSession, messageID, userID, guildID string, window time.Duration, onExpire func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ms := &messageSession{userID: userID, guildID: guildID}
	ms.expiry = time.AfterFunc(window, func() {
		b.mu.Lock()
		delete(owners, messageID)
		b.mu.Unlock()
		if onExpire != nil {
			onExpire()
		}
	})
	owners[messageID] = ms
}

// ownerOf returns the tracked owner of a message, if any
func (b *Bot) ownerOf(owners map[string]*messageSession, messageID string) (*messageSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ms, ok := owners[messageID]
	return ms, ok
}

// untrackMessage drops a message and cancels its expiry timer
func (b *Bot) untrackMessage(owners map[string]*messageSession, messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ms, ok := owners[messageID]; ok {
		ms.expiry.Stop()
		delete(owners, messageID)
	}
}
