package blackjack

import (
	"errors"
	"fmt"
	"time"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
)

// State represents where a round is in its lifecycle
type State string

const (
	StatePlayerTurn State = "PLAYER_TURN"
	StateDealerTurn State = "DEALER_TURN"
	StateResolved   State = "RESOLVED"
)

var (
	ErrNotPlayerTurn = errors.New("it is not the player's turn")
	ErrNotDealerTurn = errors.New("it is not the dealer's turn")
	ErrRoundResolved = errors.New("round is already resolved")
	ErrNotResolved   = errors.New("round is not resolved yet")
)

// Money values for a fixed-stake round, in cents
const (
	StakeCents     int64 = 1000
	winCents       int64 = 1000
	blackjackCents int64 = 1500
)

// Round is a single heads-up blackjack round between one player and the
// dealer, dealt from its own fresh deck. It is not safe for concurrent
// use; the session coordinator serializes access.
type Round struct {
	UserID  string
	GuildID string

	deck       *entities.Deck
	playerHand []*entities.Card
	dealerHand []*entities.Card
	state      State
	outcome    economy.OutcomeKind
	startedAt  time.Time
}

// NewRound deals a fresh round: two cards each, player first, then
// checks the player's hand for a natural. A round can therefore be born
// already resolved. Both naturals at once is a tie, not a player win.
func NewRound(userID, guildID string) (*Round, error) {
	return newRoundWithDeck(userID, guildID, entities.NewDeck())
}

func newRoundWithDeck(userID, guildID string, deck *entities.Deck) (*Round, error) {
	r := &Round{
		UserID:    userID,
		GuildID:   guildID,
		deck:      deck,
		state:     StatePlayerTurn,
		startedAt: time.Now(),
	}

	for i := 0; i < 2; i++ {
		if err := r.dealTo(&r.playerHand); err != nil {
			return nil, err
		}
		if err := r.dealTo(&r.dealerHand); err != nil {
			return nil, err
		}
	}

	// Only the player's natural ends the round on the deal. A dealer
	// natural stays hidden behind the hole card and settles at showdown,
	// so a player who draws to 21 can still tie it.
	if IsNatural(r.playerHand) {
		if IsNatural(r.dealerHand) {
			r.conclude(economy.OutcomeTie)
		} else {
			r.conclude(economy.OutcomeBlackjack)
		}
	}

	return r, nil
}

func (r *Round) dealTo(hand *[]*entities.Card) error {
	card, err := r.deck.Draw()
	if err != nil {
		return fmt.Errorf("error dealing card: %w", err)
	}
	*hand = append(*hand, card)
	return nil
}

// State returns the round's current lifecycle state
func (r *Round) State() State {
	return r.state
}

// Hit draws one card for the player. Busting resolves the round
// immediately; any other total leaves the player free to keep acting,
// even at 21.
func (r *Round) Hit() (*entities.Card, error) {
	if r.state == StateResolved {
		return nil, ErrRoundResolved
	}
	if r.state != StatePlayerTurn {
		return nil, ErrNotPlayerTurn
	}

	card, err := r.deck.Draw()
	if err != nil {
		return nil, fmt.Errorf("error drawing card: %w", err)
	}
	r.playerHand = append(r.playerHand, card)

	if GetBestScore(r.playerHand) > BlackjackScore {
		r.conclude(economy.OutcomeBust)
	}

	return card, nil
}

// Stand ends the player's turn and hands control to the dealer
func (r *Round) Stand() error {
	if r.state == StateResolved {
		return ErrRoundResolved
	}
	if r.state != StatePlayerTurn {
		return ErrNotPlayerTurn
	}
	r.state = StateDealerTurn
	return nil
}

// DealerStep advances the dealer by at most one card. The dealer draws
// while under 17 and stands at 17 or more; once the dealer is done the
// round resolves and done is true. The coordinator paces these calls so
// spectators see the dealer's hand build card by card.
func (r *Round) DealerStep() (*entities.Card, bool, error) {
	if r.state == StateResolved {
		return nil, true, nil
	}
	if r.state != StateDealerTurn {
		return nil, false, ErrNotDealerTurn
	}

	if GetBestScore(r.dealerHand) >= DealerStandScore {
		r.resolveShowdown()
		return nil, true, nil
	}

	card, err := r.deck.Draw()
	if err != nil {
		return nil, false, fmt.Errorf("error drawing dealer card: %w", err)
	}
	r.dealerHand = append(r.dealerHand, card)

	if GetBestScore(r.dealerHand) >= DealerStandScore {
		r.resolveShowdown()
		return card, true, nil
	}
	return card, false, nil
}

// resolveShowdown settles a round where both sides finished their turns
func (r *Round) resolveShowdown() {
	dealerScore := GetBestScore(r.dealerHand)
	playerScore := GetBestScore(r.playerHand)

	switch {
	case dealerScore > BlackjackScore:
		r.conclude(economy.OutcomeWin)
	case playerScore > dealerScore:
		r.conclude(economy.OutcomeWin)
	case playerScore < dealerScore:
		r.conclude(economy.OutcomeLoss)
	default:
		r.conclude(economy.OutcomeTie)
	}
}

func (r *Round) conclude(kind economy.OutcomeKind) {
	r.outcome = kind
	r.state = StateResolved
}

// Outcome returns the ledger delta for a resolved round
func (r *Round) Outcome() (economy.RoundOutcome, error) {
	if r.state != StateResolved {
		return economy.RoundOutcome{}, ErrNotResolved
	}

	var money int64
	switch r.outcome {
	case economy.OutcomeWin:
		money = winCents
	case economy.OutcomeBlackjack:
		money = blackjackCents
	case economy.OutcomeLoss, economy.OutcomeBust:
		money = -StakeCents
	}
	return economy.RoundOutcome{Kind: r.outcome, Money: money}, nil
}

// RoundView is a read-only snapshot of a round for rendering. The dealer
// hole card is withheld while the player is still acting.
type RoundView struct {
	UserID      string
	State       State
	Outcome     economy.OutcomeKind
	PlayerHand  []*entities.Card
	DealerHand  []*entities.Card
	PlayerScore int
	DealerScore int
	HideHole    bool
}

// View snapshots the round for presentation
func (r *Round) View() RoundView {
	v := RoundView{
		UserID:      r.UserID,
		State:       r.state,
		Outcome:     r.outcome,
		PlayerHand:  append([]*entities.Card(nil), r.playerHand...),
		PlayerScore: GetBestScore(r.playerHand),
		HideHole:    r.state == StatePlayerTurn,
	}

	if v.HideHole {
		// Only the upcard is visible mid-round
		v.DealerHand = append([]*entities.Card(nil), r.dealerHand[:1]...)
		v.DealerScore = GetBestScore(r.dealerHand[:1])
	} else {
		v.DealerHand = append([]*entities.Card(nil), r.dealerHand...)
		v.DealerScore = GetBestScore(r.dealerHand)
	}
	return v
}
