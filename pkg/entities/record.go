package entities

import "time"

// GameKind identifies which minigame produced a record
type GameKind string

const (
	GameBlackjack GameKind = "blackjack"
	GameSlots     GameKind = "slots"
)

// RoundRecord is an archive entry for one resolved blackjack round or one
// slot spin. Records are written best-effort; the ledger is the source of
// truth for aggregate statistics.
type RoundRecord struct {
	ID          string
	UserID      string
	GuildID     string
	Game        GameKind
	Outcome     string // e.g. "WIN", "BLACKJACK", "TRIPLE_3", "NO_MATCH"
	MoneyDelta  int64  // cents, net effect on the user's balance
	CompletedAt time.Time
}
