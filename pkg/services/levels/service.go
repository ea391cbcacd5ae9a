package levels

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
)

const (
	// MessageCooldown limits how often a message can earn XP
	MessageCooldown = 12 * time.Second

	// baseGain is the partial XP earned per qualifying message before
	// role multipliers
	baseGain = 10.0

	// pxpPerXP is how much partial XP rolls into one whole XP point
	pxpPerXP = 10.0
)

// Role names and bonuses that raise a member's XP multiplier. The
// booster bonus applies to the guild's premium subscriber role, looked
// up by tag rather than by name.
const (
	BoosterBonus = 0.5

	TwitchTier1Role = "Twitch Subscriber: Tier 1"
	TwitchTier2Role = "Twitch Subscriber: Tier 2"
	TwitchTier3Role = "Twitch Subscriber: Tier 3"
)

// TwitchTierBonuses maps each Twitch subscriber role to its additive bonus
var TwitchTierBonuses = map[string]float64{
	TwitchTier1Role: 0.2,
	TwitchTier2Role: 0.4,
	TwitchTier3Role: 0.8,
}

// Result reports what one message did to a user's XP
type Result struct {
	User      *entities.User
	Awarded   bool
	LeveledUp bool
}

// Service applies passive XP from chat activity
type Service struct {
	repo user.Repository
}

// NewService creates a new leveling service
func NewService(repo user.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("user repository is required")
	}
	return &Service{repo: repo}, nil
}

// ApplyGain applies one message's XP gain to the user in memory. It
// returns false without mutating anything while the cooldown is active.
// Partial XP rolls into whole XP, which rolls into levels; each level
// costs one more XP than the one before it.
func ApplyGain(u *entities.User, multiplier float64, now time.Time) (awarded, leveledUp bool) {
	if !u.LastMessage.IsZero() && now.Sub(u.LastMessage) < MessageCooldown {
		return false, false
	}
	u.LastMessage = now

	u.PXP += baseGain * multiplier
	for u.PXP >= pxpPerXP {
		u.PXP -= pxpPerXP
		u.XP++
		u.TotalXP++
		u.WeeklyXP++
	}

	for u.XP >= u.LevelXP {
		u.XP -= u.LevelXP
		u.Level++
		u.LevelXP += u.Level
		leveledUp = true
	}

	return true, leveledUp
}

// HandleMessage awards XP for one chat message and persists the result.
// The multiplier comes from the caller, which knows the member's roles.
// A cooldown hit returns the current user with Awarded false and no
// write.
func (s *Service) HandleMessage(ctx context.Context, userID, guildID string, multiplier float64) (*Result, error) {
	u, err := s.repo.GetUser(ctx, userID, guildID)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("error getting user %s: %w", userID, err)
		}
		u = entities.NewUser(userID, guildID)
	}

	awarded, leveledUp := ApplyGain(u, multiplier, time.Now())
	if !awarded {
		return &Result{User: u}, nil
	}

	if err := s.repo.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("error saving user %s: %w", userID, err)
	}

	if leveledUp {
		log.Printf("User %s reached level %d in guild %s", userID, u.Level, guildID)
	}
	return &Result{User: u, Awarded: true, LeveledUp: leveledUp}, nil
}

// ResetWeeklyXP zeroes every user's weekly XP counter. Run on a schedule.
func (s *Service) ResetWeeklyXP(ctx context.Context) error {
	if err := s.repo.ResetWeeklyXP(ctx); err != nil {
		return fmt.Errorf("error resetting weekly XP: %w", err)
	}
	log.Info("Weekly XP counters reset")
	return nil
}
