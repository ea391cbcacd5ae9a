package entities

import "time"

// SlotSymbolCount is the number of distinct slot machine symbols.
const SlotSymbolCount = 9

const (
	// StartingMoney is the bankroll granted when a user record is first
	// created, in cents. Without it the $10 minimum blackjack stake would
	// be unreachable.
	StartingMoney int64 = 10_000

	// StartingLevelXP is the XP cost of the first level-up.
	StartingLevelXP int64 = 10
)

// User is the persisted per-user record, keyed by user and guild. It is
// created lazily on the first qualifying action and mutated only by the
// levels service (XP block) and the economy ledger (money blocks).
type User struct {
	UserID  string
	GuildID string

	// Leveling
	XP          int64
	PXP         float64 // partial XP, rolls into XP at 10 per point
	Level       int64
	LevelXP     int64 // XP required for the next level
	TotalXP     int64
	WeeklyXP    int64
	LastMessage time.Time

	// Blackjack ledger. All money amounts are in cents.
	Money         int64
	Rounds        int64
	Wins          int64
	Losses        int64
	Ties          int64
	Blackjacks    int64
	MoneyGained   int64
	MoneyLost     int64
	MoneyNet      int64 // always MoneyGained - MoneyLost, recomputed on every mutation
	Points        int64
	StreakCurrent int64
	StreakBest    int64

	// Slots ledger
	RoundsSlots      int64
	MoneyBetSlots    int64
	MoneySpentSlots  int64
	MoneyEarnedSlots int64
	MoneyNetSlots    int64
	MaxWon           int64 // largest displayed win, in cents
	Doubles          [SlotSymbolCount]int64
	Triples          [SlotSymbolCount]int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a fresh user record with zeroed counters and the
// starting bankroll
func NewUser(userID, guildID string) *User {
	now := time.Now()
	return &User{
		UserID:    userID,
		GuildID:   guildID,
		LevelXP:   StartingLevelXP,
		Money:     StartingMoney,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
