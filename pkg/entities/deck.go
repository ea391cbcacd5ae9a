package entities

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
// Hand sizes keep this unreachable in practice, but it must be guarded.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck holds the cards remaining for one round. Each round owns its own deck.
type Deck struct {
	cards []*Card
	rng   *rand.Rand
}

// NewDeck creates a deck of the 52 standard cards, one of each rank and suit
func NewDeck() *Deck {
	return NewDeckWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewDeckWithRand creates a deck using the given random source, so tests
// can fix the draw order
func NewDeckWithRand(rng *rand.Rand) *Deck {
	cards := make([]*Card, 0, 52)
	suits := []Suit{Spades, Hearts, Diamonds, Clubs}
	ranks := []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}

	d := &Deck{cards: cards, rng: rng}
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck that deals the given cards in order.
// Test helper for forcing specific hands.
func NewStackedDeck(cards ...*Card) *Deck {
	return &Deck{
		cards: append([]*Card(nil), cards...),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Shuffle randomizes the order of the remaining cards
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card
func (d *Deck) Draw() (*Card, error) {
	if len(d.cards) == 0 {
		return nil, ErrEmptyDeck
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}
