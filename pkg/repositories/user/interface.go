package user

import (
	"context"
	"errors"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/repository.go -package=mock_user

// ErrUserNotFound is returned when no record exists for a user+guild pair
var ErrUserNotFound = errors.New("user not found")

// Repository defines storage operations for user ledger records
type Repository interface {
	// GetUser retrieves a user record by user and guild ID
	GetUser(ctx context.Context, userID, guildID string) (*entities.User, error)

	// SaveUser creates or updates a user record
	SaveUser(ctx context.Context, user *entities.User) error

	// ListGuildUsers retrieves all user records for a guild
	ListGuildUsers(ctx context.Context, guildID string) ([]*entities.User, error)

	// ResetWeeklyXP zeroes the weekly XP counter for every user
	ResetWeeklyXP(ctx context.Context) error

	// Close closes any resources used by the repository
	Close() error
}
