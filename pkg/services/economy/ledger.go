package economy

import (
	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// OutcomeKind tags the result of one blackjack round
type OutcomeKind string

const (
	OutcomeWin       OutcomeKind = "WIN"
	OutcomeLoss      OutcomeKind = "LOSS"
	OutcomeTie       OutcomeKind = "TIE"
	OutcomeBlackjack OutcomeKind = "BLACKJACK"
	OutcomeBust      OutcomeKind = "BUST"
)

// String returns the string representation of the outcome kind
func (k OutcomeKind) String() string {
	return string(k)
}

// IsWin returns true if this outcome counts as a win for streak purposes
func (k OutcomeKind) IsWin() bool {
	return k == OutcomeWin || k == OutcomeBlackjack
}

// BasePoints returns the unmultiplied point value of the outcome
func (k OutcomeKind) BasePoints() int64 {
	switch k {
	case OutcomeWin:
		return 1
	case OutcomeBlackjack:
		return 2
	case OutcomeLoss, OutcomeBust:
		return -1
	default:
		return 0
	}
}

// RoundOutcome is one blackjack round's terminal result: the outcome tag
// and the signed money delta in cents.
type RoundOutcome struct {
	Kind  OutcomeKind
	Money int64
}

// ApplyRoundOutcome applies one round's outcome to the user ledger as a
// single in-memory mutation, and returns the points earned.
//
// Wins extend the streak and their points are multiplied by it; losses
// score flat negative points regardless of any past streak. Rewarding
// consecutive wins superlinearly while keeping losses flat is the
// intended game design, not an oversight.
func ApplyRoundOutcome(u *entities.User, o RoundOutcome) int64 {
	u.Rounds++

	switch o.Kind {
	case OutcomeWin:
		u.Wins++
	case OutcomeBlackjack:
		u.Wins++
		u.Blackjacks++
	case OutcomeLoss, OutcomeBust:
		u.Losses++
	case OutcomeTie:
		u.Ties++
	}

	u.Money += o.Money
	if o.Money > 0 {
		u.MoneyGained += o.Money
	} else if o.Money < 0 {
		u.MoneyLost += -o.Money
	}
	// Recomputed every mutation so it can never drift
	u.MoneyNet = u.MoneyGained - u.MoneyLost

	if o.Kind.IsWin() {
		u.StreakCurrent++
	} else {
		u.StreakCurrent = 0
	}
	if u.StreakCurrent > u.StreakBest {
		u.StreakBest = u.StreakCurrent
	}

	points := o.Kind.BasePoints()
	if o.Kind.IsWin() {
		multiplier := u.StreakCurrent
		if multiplier < 1 {
			multiplier = 1
		}
		points *= multiplier
	}
	u.Points += points

	return points
}

// SpinOutcome is one slot spin's result: the bet and payout in cents, the
// matched symbol and count (zero when nothing matched), and the displayed
// win total used for the MaxWon stat.
type SpinOutcome struct {
	Bet          int64
	Payout       int64
	Symbol       int
	Count        int
	DisplayTotal int64
}

// ApplySpin applies one slot spin to the user ledger as a single
// in-memory mutation. The bet is spent up front; the payout, if any, is
// credited back. Slot money flows are tracked separately from the
// blackjack gained/lost counters.
func ApplySpin(u *entities.User, s SpinOutcome) {
	u.RoundsSlots++
	u.MoneyBetSlots += s.Bet
	u.MoneySpentSlots += s.Bet
	u.Money -= s.Bet

	if s.Payout > 0 {
		u.Money += s.Payout
		u.MoneyEarnedSlots += s.Payout

		switch s.Count {
		case 2:
			u.Doubles[s.Symbol-1]++
		case 3:
			u.Triples[s.Symbol-1]++
		}

		if s.DisplayTotal > u.MaxWon {
			u.MaxWon = s.DisplayTotal
		}
	}

	u.MoneyNetSlots = u.MoneyEarnedSlots - u.MoneySpentSlots
}
