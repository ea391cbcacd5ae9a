package slots

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBet(t *testing.T) {
	for _, bet := range AllowedBets {
		assert.NoError(t, ValidateBet(bet), "bet %d should be allowed", bet)
	}

	for _, bet := range []int64{0, -5, 2, 20, 999, 10000} {
		assert.ErrorIs(t, ValidateBet(bet), ErrInvalidBet, "bet %d should be rejected", bet)
	}
}

func TestResolveRejectsInvalidBet(t *testing.T) {
	machine := NewMachineWithRand(rand.New(rand.NewSource(1)))

	_, err := machine.Resolve(7)
	assert.ErrorIs(t, err, ErrInvalidBet)
}

func TestRealMultiplier(t *testing.T) {
	// Symbol 3 has odds 0.15: fair multiplier 1/0.15, edge 0.97
	triple := RealMultiplier(3, 3)
	assert.InDelta(t, (1/0.15)*0.97, triple, 1e-9)

	// Doubles pay half the adjusted fair multiplier
	double := RealMultiplier(3, 2)
	assert.InDelta(t, triple/2, double, 1e-9)

	// Rarer symbols pay more
	assert.Greater(t, RealMultiplier(9, 3), RealMultiplier(1, 3))
}

func TestDisplayMultiplier(t *testing.T) {
	assert.Equal(t, 21.0, DisplayMultiplier(3, 3))
	assert.Equal(t, 0.7, DisplayMultiplier(3, 2))
	assert.Equal(t, 8787.0, DisplayMultiplier(9, 3))
	assert.Equal(t, 30.0, DisplayMultiplier(9, 2))
}

func TestTriplePayoutScenario(t *testing.T) {
	// bet=$10 on a triple 3: payout is the exact multiplier, the shown
	// total uses the pretty 21x
	betCents := int64(1000)
	real := RealMultiplier(3, 3)

	wantPayout := int64(math.Round(float64(betCents) * real))
	assert.Equal(t, int64(6467), wantPayout)

	wantDisplay := int64(math.Round(float64(betCents) * DisplayMultiplier(3, 3)))
	assert.Equal(t, int64(21000), wantDisplay)
}

func TestSpinSymbolRange(t *testing.T) {
	machine := NewMachineWithRand(rand.New(rand.NewSource(42)))

	counts := make(map[int]int)
	for i := 0; i < 10000; i++ {
		s := machine.SpinSymbol()
		require.GreaterOrEqual(t, s, 1)
		require.LessOrEqual(t, s, 9)
		counts[s]++
	}

	// The distribution is strictly decreasing, so the most common
	// symbol must show up far more often than the rarest
	assert.Greater(t, counts[1], counts[9])
}

// maxSource always yields the largest possible value, driving Float64
// as close to 1 as it gets
type maxSource struct{}

func (maxSource) Int63() int64 { return math.MaxInt64 }
func (maxSource) Seed(int64)   {}

func TestSpinSymbolFallbackAtUpperEdge(t *testing.T) {
	machine := NewMachineWithRand(rand.New(maxSource{}))
	assert.Equal(t, 9, machine.SpinSymbol())
}

func TestResolveConsistency(t *testing.T) {
	machine := NewMachineWithRand(rand.New(rand.NewSource(7)))

	for i := 0; i < 1000; i++ {
		result, err := machine.Resolve(10)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), result.BetCents)
		for _, s := range result.Symbols {
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, 9)
		}

		if result.MatchCount == 0 {
			assert.Zero(t, result.PayoutCents)
			assert.Zero(t, result.DisplayTotalCents)
			assert.Zero(t, result.MatchSymbol)
			assert.False(t, result.Won())
			continue
		}

		require.Contains(t, []int{2, 3}, result.MatchCount)
		assert.True(t, result.Won())

		// Count the match ourselves and cross-check
		n := 0
		for _, s := range result.Symbols {
			if s == result.MatchSymbol {
				n++
			}
		}
		assert.Equal(t, result.MatchCount, n)

		wantPayout := int64(math.Round(1000 * RealMultiplier(result.MatchSymbol, result.MatchCount)))
		assert.Equal(t, wantPayout, result.PayoutCents)

		wantDisplay := int64(math.Round(1000 * DisplayMultiplier(result.MatchSymbol, result.MatchCount)))
		assert.Equal(t, wantDisplay, result.DisplayTotalCents)
	}
}

func TestSpinResultOutcome(t *testing.T) {
	result := &SpinResult{
		Symbols:           [3]int{3, 3, 5},
		MatchSymbol:       3,
		MatchCount:        2,
		BetCents:          1000,
		PayoutCents:       3233,
		DisplayMultiplier: 0.7,
		DisplayTotalCents: 700,
	}

	outcome := result.Outcome()
	assert.Equal(t, int64(1000), outcome.Bet)
	assert.Equal(t, int64(3233), outcome.Payout)
	assert.Equal(t, 3, outcome.Symbol)
	assert.Equal(t, 2, outcome.Count)
	assert.Equal(t, int64(700), outcome.DisplayTotal)
}
