package economy

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
)

var (
	// ErrInsufficientFunds is returned when a user cannot cover a stake or bet
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistence wraps a failed ledger save. The in-memory result is
	// still returned alongside it so the caller can show the outcome and
	// warn that stats may not have been recorded.
	ErrPersistence = errors.New("failed to save user ledger")
)

// Service owns all reads and writes of the per-user economy ledger.
// Game engines compute outcomes; only this service touches the store.
type Service struct {
	repo user.Repository
}

// NewService creates a new economy service
func NewService(repo user.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("user repository is required")
	}
	return &Service{repo: repo}, nil
}

// GetOrCreateUser fetches a user's ledger, creating a fresh one with the
// starting bankroll on first contact. The second return is true when the
// user was just created.
func (s *Service) GetOrCreateUser(ctx context.Context, userID, guildID string) (*entities.User, bool, error) {
	u, err := s.repo.GetUser(ctx, userID, guildID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, false, fmt.Errorf("error getting user %s: %w", userID, err)
	}

	u = entities.NewUser(userID, guildID)
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return nil, false, fmt.Errorf("error creating user %s: %w", userID, err)
	}

	log.Printf("Created ledger for user %s in guild %s", userID, guildID)
	return u, true, nil
}

// Balance returns a user's current bankroll in cents
func (s *Service) Balance(ctx context.Context, userID, guildID string) (int64, error) {
	u, _, err := s.GetOrCreateUser(ctx, userID, guildID)
	if err != nil {
		return 0, err
	}
	return u.Money, nil
}

// ApplyRoundOutcome records one finished blackjack round against the
// user's ledger and persists it. On a save failure the mutated user and
// points are still returned, wrapped in ErrPersistence; the round result
// stands either way and is never re-applied.
func (s *Service) ApplyRoundOutcome(ctx context.Context, userID, guildID string, o RoundOutcome) (*entities.User, int64, error) {
	u, _, err := s.GetOrCreateUser(ctx, userID, guildID)
	if err != nil {
		return nil, 0, err
	}

	points := ApplyRoundOutcome(u, o)

	if err := s.repo.SaveUser(ctx, u); err != nil {
		log.Errorf("Failed to save ledger for user %s after %s round: %v", userID, o.Kind, err)
		return u, points, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return u, points, nil
}

// ApplySpin records one slot spin against the user's ledger and persists
// it. Returns ErrInsufficientFunds without mutating anything when the
// bankroll cannot cover the bet.
func (s *Service) ApplySpin(ctx context.Context, userID, guildID string, o SpinOutcome) (*entities.User, error) {
	u, _, err := s.GetOrCreateUser(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}

	if u.Money < o.Bet {
		return nil, ErrInsufficientFunds
	}

	ApplySpin(u, o)

	if err := s.repo.SaveUser(ctx, u); err != nil {
		log.Errorf("Failed to save ledger for user %s after slot spin: %v", userID, err)
		return u, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return u, nil
}
