package blackjack

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/results"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
)

var (
	// ErrAlreadyPlaying is returned when a user starts a round while one is live
	ErrAlreadyPlaying = errors.New("user already has an active round")

	// ErrNoActiveRound is returned for actions against a round that no longer exists
	ErrNoActiveRound = errors.New("no active round for user")
)

const (
	// DefaultDealerPace is the delay between dealer draws so spectators
	// can follow the hand building up
	DefaultDealerPace = 1 * time.Second

	// DefaultDecisionTimeout abandons a round the player walked away from
	DefaultDecisionTimeout = 120 * time.Second
)

// Settlement is the result of a settled round: the ledger delta, the
// points earned, and the user's ledger after the write. SaveFailed marks
// a settlement whose persist did not go through.
type Settlement struct {
	Outcome    economy.RoundOutcome
	Points     int64
	User       *entities.User
	SaveFailed bool
}

// Event is pushed to a session's notify function whenever the round
// changes outside a direct player action: dealer draws, settlement, or
// a decision timeout.
type Event struct {
	View       RoundView
	Settlement *Settlement
	TimedOut   bool
}

// UpdateFunc receives async round events for rendering. It is called
// from timer goroutines and must not block.
type UpdateFunc func(Event)

type session struct {
	round    *Round
	notify   UpdateFunc
	deadline *time.Timer
	dealer   *time.Timer
	settled  bool
}

// Coordinator owns every live blackjack round and enforces one round
// per user. It drives dealer auto-play on its own timers and is the
// only path from a round outcome to the economy ledger.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*session

	economy *economy.Service
	results results.Repository

	dealerPace      time.Duration
	decisionTimeout time.Duration

	// newRound is swappable so tests can stack the deck
	newRound func(userID, guildID string) (*Round, error)
}

// NewCoordinator creates a round coordinator. The results repository is
// optional; archiving is best-effort and a nil repository disables it.
func NewCoordinator(econ *economy.Service, resultsRepo results.Repository) (*Coordinator, error) {
	if econ == nil {
		return nil, errors.New("economy service is required")
	}
	return &Coordinator{
		sessions:        make(map[string]*session),
		economy:         econ,
		results:         resultsRepo,
		dealerPace:      DefaultDealerPace,
		decisionTimeout: DefaultDecisionTimeout,
		newRound:        NewRound,
	}, nil
}

func sessionKey(userID, guildID string) string {
	return userID + "/" + guildID
}

// StartRound deals a new round for the user after checking they can
// cover the stake. A round that resolves on the deal (a player natural)
// settles immediately and returns its settlement.
func (c *Coordinator) StartRound(ctx context.Context, userID, guildID string, notify UpdateFunc) (RoundView, *Settlement, error) {
	balance, err := c.economy.Balance(ctx, userID, guildID)
	if err != nil {
		return RoundView{}, nil, err
	}
	if balance < StakeCents {
		return RoundView{}, nil, economy.ErrInsufficientFunds
	}

	c.mu.Lock()
	key := sessionKey(userID, guildID)
	if _, ok := c.sessions[key]; ok {
		c.mu.Unlock()
		return RoundView{}, nil, ErrAlreadyPlaying
	}

	round, err := c.newRound(userID, guildID)
	if err != nil {
		c.mu.Unlock()
		return RoundView{}, nil, err
	}

	s := &session{round: round, notify: notify}
	c.sessions[key] = s

	if round.State() == StateResolved {
		settlement := c.settleLocked(ctx, key, s)
		view := round.View()
		c.mu.Unlock()
		return view, settlement, nil
	}

	s.deadline = time.AfterFunc(c.decisionTimeout, func() { c.abandon(key) })
	view := round.View()
	c.mu.Unlock()

	log.Printf("Started blackjack round for user %s in guild %s", userID, guildID)
	return view, nil, nil
}

// Hit draws a card for the user's live round. A bust settles at once;
// otherwise the player keeps acting, even on 21.
func (c *Coordinator) Hit(ctx context.Context, userID, guildID string) (RoundView, *Settlement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sessionKey(userID, guildID)
	s, ok := c.sessions[key]
	if !ok {
		return RoundView{}, nil, ErrNoActiveRound
	}

	if _, err := s.round.Hit(); err != nil {
		return RoundView{}, nil, err
	}

	if s.round.State() == StateResolved {
		settlement := c.settleLocked(ctx, key, s)
		return s.round.View(), settlement, nil
	}

	s.deadline.Reset(c.decisionTimeout)
	return s.round.View(), nil, nil
}

// Stand ends the user's turn and starts the paced dealer auto-play
func (c *Coordinator) Stand(ctx context.Context, userID, guildID string) (RoundView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sessionKey(userID, guildID)
	s, ok := c.sessions[key]
	if !ok {
		return RoundView{}, ErrNoActiveRound
	}

	if err := s.round.Stand(); err != nil {
		return RoundView{}, err
	}

	c.scheduleDealerLocked(key, s)
	return s.round.View(), nil
}

// EndRound discards a user's live round without settling it. Calling it
// for a user with no round is a no-op.
func (c *Coordinator) EndRound(userID, guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(sessionKey(userID, guildID))
}

// HasActiveRound reports whether the user has a live round
func (c *Coordinator) HasActiveRound(userID, guildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionKey(userID, guildID)]
	return ok
}

// scheduleDealerLocked arms the next paced dealer draw. Caller holds c.mu.
func (c *Coordinator) scheduleDealerLocked(key string, s *session) {
	if s.deadline != nil {
		s.deadline.Stop()
	}
	s.dealer = time.AfterFunc(c.dealerPace, func() { c.dealerStep(key) })
}

func (c *Coordinator) dealerStep(key string) {
	c.mu.Lock()

	s, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return
	}

	_, done, err := s.round.DealerStep()
	if err != nil {
		log.Errorf("Dealer step failed for session %s: %v", key, err)
		c.removeLocked(key)
		c.mu.Unlock()
		return
	}

	var event Event
	if done {
		settlement := c.settleLocked(context.Background(), key, s)
		event = Event{View: s.round.View(), Settlement: settlement}
	} else {
		s.dealer = time.AfterFunc(c.dealerPace, func() { c.dealerStep(key) })
		event = Event{View: s.round.View()}
	}
	notify := s.notify
	c.mu.Unlock()

	if notify != nil {
		notify(event)
	}
}

// abandon fires on decision timeout: the round vanishes with no ledger
// write, as if it never happened.
func (c *Coordinator) abandon(key string) {
	c.mu.Lock()

	s, ok := c.sessions[key]
	if !ok || s.settled {
		c.mu.Unlock()
		return
	}

	view := s.round.View()
	notify := s.notify
	c.removeLocked(key)
	c.mu.Unlock()

	log.Printf("Abandoned blackjack round %s after decision timeout", key)
	if notify != nil {
		notify(Event{View: view, TimedOut: true})
	}
}

// settleLocked applies a resolved round to the ledger exactly once and
// releases the session. Caller holds c.mu.
func (c *Coordinator) settleLocked(ctx context.Context, key string, s *session) *Settlement {
	if s.settled {
		return nil
	}
	s.settled = true

	outcome, err := s.round.Outcome()
	if err != nil {
		log.Errorf("Settle called on unresolved round %s: %v", key, err)
		c.removeLocked(key)
		return nil
	}

	u, points, err := c.economy.ApplyRoundOutcome(ctx, s.round.UserID, s.round.GuildID, outcome)
	settlement := &Settlement{Outcome: outcome, Points: points, User: u}
	if err != nil {
		settlement.SaveFailed = true
	}

	c.archive(ctx, s.round, outcome)
	c.removeLocked(key)
	return settlement
}

// archive records the round for history queries. Failures are logged
// and swallowed; the ledger is the source of truth.
func (c *Coordinator) archive(ctx context.Context, r *Round, outcome economy.RoundOutcome) {
	if c.results == nil {
		return
	}

	record := &entities.RoundRecord{
		ID:          uuid.New().String(),
		UserID:      r.UserID,
		GuildID:     r.GuildID,
		Game:        entities.GameBlackjack,
		Outcome:     outcome.Kind.String(),
		MoneyDelta:  outcome.Money,
		CompletedAt: time.Now(),
	}
	if err := c.results.SaveRecord(ctx, record); err != nil {
		log.Warnf("Failed to archive blackjack round for user %s: %v", r.UserID, err)
	}
}

// removeLocked cancels a session's timers and drops it. Caller holds c.mu.
func (c *Coordinator) removeLocked(key string) {
	s, ok := c.sessions[key]
	if !ok {
		return
	}
	if s.deadline != nil {
		s.deadline.Stop()
	}
	if s.dealer != nil {
		s.dealer.Stop()
	}
	delete(c.sessions, key)
}
