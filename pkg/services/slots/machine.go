package slots

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
)

// ErrInvalidBet is returned for a bet outside the allowed denominations
var ErrInvalidBet = errors.New("bet is not an allowed denomination")

// HouseEdge discounts the fair payout odds so expected value favors the
// house over many spins
const HouseEdge = 0.97

// ReelCount is the number of independent reels per spin
const ReelCount = 3

// weights is the symbol distribution, strictly decreasing from symbol 1
// to symbol 9 and summing to 1.0
var weights = [entities.SlotSymbolCount]float64{0.25, 0.20, 0.15, 0.12, 0.10, 0.07, 0.05, 0.04, 0.02}

// Displayed multipliers are the pretty values shown to the player and
// used for the MaxWon stat. The exact multiplier derived from the
// symbol odds drives the actual payout; the two deliberately differ.
var (
	displayedDouble = [entities.SlotSymbolCount]float64{0.3, 0.4, 0.7, 1, 1.3, 2.7, 5, 8, 30}
	displayedTriple = [entities.SlotSymbolCount]float64{4, 9, 21, 41, 70, 205, 562, 1098, 8787}
)

// AllowedBets are the valid bet denominations in whole dollars
var AllowedBets = []int64{1, 5, 10, 50, 100, 500, 1000}

// SpinResult is one resolved spin. MatchSymbol and MatchCount are zero
// when no symbol repeated. Money fields are in cents.
type SpinResult struct {
	Symbols    [ReelCount]int
	MatchSymbol int
	MatchCount  int

	BetCents          int64
	PayoutCents       int64
	DisplayMultiplier float64
	DisplayTotalCents int64
}

// Won reports whether the spin paid out
func (r *SpinResult) Won() bool {
	return r.MatchCount > 0
}

// Outcome converts the spin into a ledger delta
func (r *SpinResult) Outcome() economy.SpinOutcome {
	return economy.SpinOutcome{
		Bet:          r.BetCents,
		Payout:       r.PayoutCents,
		Symbol:       r.MatchSymbol,
		Count:        r.MatchCount,
		DisplayTotal: r.DisplayTotalCents,
	}
}

// Machine is a weighted-reel slot machine. It carries its own random
// source so tests can seed it; the zero value is not usable.
type Machine struct {
	rng *rand.Rand
}

// NewMachine creates a slot machine with a time-seeded random source
func NewMachine() *Machine {
	return NewMachineWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewMachineWithRand creates a slot machine using the given random source
func NewMachineWithRand(rng *rand.Rand) *Machine {
	return &Machine{rng: rng}
}

// SpinSymbol draws one symbol 1..9 by walking the cumulative weights.
// The final symbol is the fallback for floating-point edge cases where
// the cumulative sum never quite reaches the drawn value.
func (m *Machine) SpinSymbol() int {
	r := m.rng.Float64()
	sum := 0.0
	for i, w := range weights {
		sum += w
		if r < sum {
			return i + 1
		}
	}
	return entities.SlotSymbolCount
}

// RealMultiplier is the exact payout multiplier: the fair odds of the
// symbol discounted by the house edge, halved for a two-of-a-kind. The
// halved double is a game-design convention, not a fair payout.
func RealMultiplier(symbol, count int) float64 {
	adjusted := (1 / weights[symbol-1]) * HouseEdge
	if count == 2 {
		return adjusted / 2
	}
	return adjusted
}

// DisplayMultiplier is the rounded multiplier shown to the player
func DisplayMultiplier(symbol, count int) float64 {
	if count == 2 {
		return displayedDouble[symbol-1]
	}
	return displayedTriple[symbol-1]
}

// ValidateBet checks a whole-dollar bet against the allowed denominations
func ValidateBet(dollars int64) error {
	for _, b := range AllowedBets {
		if dollars == b {
			return nil
		}
	}
	return ErrInvalidBet
}

// Resolve spins three reels for a whole-dollar bet and computes the
// payout. It does not touch the ledger; the economy service owns the
// balance check and the write.
func (m *Machine) Resolve(betDollars int64) (*SpinResult, error) {
	if err := ValidateBet(betDollars); err != nil {
		return nil, err
	}

	result := &SpinResult{BetCents: betDollars * 100}
	counts := make(map[int]int, ReelCount)
	for i := range result.Symbols {
		s := m.SpinSymbol()
		result.Symbols[i] = s
		counts[s]++
	}

	// At most one symbol can repeat across three reels
	for symbol, count := range counts {
		if count > 1 {
			result.MatchSymbol = symbol
			result.MatchCount = count
			break
		}
	}

	if result.MatchCount > 0 {
		real := RealMultiplier(result.MatchSymbol, result.MatchCount)
		result.PayoutCents = int64(math.Round(float64(result.BetCents) * real))

		result.DisplayMultiplier = DisplayMultiplier(result.MatchSymbol, result.MatchCount)
		result.DisplayTotalCents = int64(math.Round(float64(result.BetCents) * result.DisplayMultiplier))
	}

	return result, nil
}
