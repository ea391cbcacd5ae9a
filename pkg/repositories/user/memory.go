package user

import (
	"context"
	"sync"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// MemoryRepository implements Repository with in-memory storage. Data is
// lost on restart; intended for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*entities.User
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]*entities.User),
	}
}

func key(userID, guildID string) string {
	return userID + "/" + guildID
}

// GetUser retrieves a user record by user and guild ID
func (r *MemoryRepository) GetUser(ctx context.Context, userID, guildID string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[key(userID, guildID)]
	if !exists {
		return nil, ErrUserNotFound
	}

	// Return a copy so callers cannot mutate stored state without SaveUser
	cp := *u
	return &cp, nil
}

// SaveUser creates or updates a user record
func (r *MemoryRepository) SaveUser(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *user
	r.users[key(user.UserID, user.GuildID)] = &cp
	return nil
}

// ListGuildUsers retrieves all user records for a guild
func (r *MemoryRepository) ListGuildUsers(ctx context.Context, guildID string) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*entities.User, 0)
	for _, u := range r.users {
		if u.GuildID == guildID {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

// ResetWeeklyXP zeroes the weekly XP counter for every user
func (r *MemoryRepository) ResetWeeklyXP(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		u.WeeklyXP = 0
	}
	return nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
