package statistics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pitboss-bot/pitboss/pkg/entities"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
)

// ErrNoStats is returned when a user has no record to rank
var ErrNoStats = errors.New("user has no statistics yet")

// Service computes per-guild ranks and leaderboards from user ledgers
type Service struct {
	repo user.Repository
}

// NewService creates a new statistics service
func NewService(repo user.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("user repository is required")
	}
	return &Service{repo: repo}, nil
}

// UserRanks is one user's record plus their position in each guild
// ranking. A rank of 0 means the user does not qualify for that board
// (no rounds played, no weekly activity).
type UserRanks struct {
	User *entities.User

	LevelRank  int
	WeeklyRank int
	PointsRank int
	SlotsRank  int
}

// GetUserRanks computes the user's position in the guild's level,
// weekly XP, blackjack points, and slots winnings rankings.
func (s *Service) GetUserRanks(ctx context.Context, userID, guildID string) (*UserRanks, error) {
	users, err := s.repo.ListGuildUsers(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error listing guild users: %w", err)
	}

	var target *entities.User
	for _, u := range users {
		if u.UserID == userID {
			target = u
			break
		}
	}
	if target == nil {
		return nil, ErrNoStats
	}

	ranks := &UserRanks{User: target}
	ranks.LevelRank = rankOf(users, userID,
		func(u *entities.User) bool { return true },
		func(a, b *entities.User) bool { return a.TotalXP > b.TotalXP })
	ranks.WeeklyRank = rankOf(users, userID,
		func(u *entities.User) bool { return u.WeeklyXP > 0 },
		func(a, b *entities.User) bool { return a.WeeklyXP > b.WeeklyXP })
	ranks.PointsRank = rankOf(users, userID,
		func(u *entities.User) bool { return u.Rounds > 0 },
		func(a, b *entities.User) bool { return a.Points > b.Points })
	ranks.SlotsRank = rankOf(users, userID,
		func(u *entities.User) bool { return u.RoundsSlots > 0 },
		func(a, b *entities.User) bool { return a.MoneyEarnedSlots > b.MoneyEarnedSlots })

	return ranks, nil
}

// rankOf returns the user's 1-based position among qualifying users, or
// 0 when the user does not qualify
func rankOf(users []*entities.User, userID string, qualifies func(*entities.User) bool, less func(a, b *entities.User) bool) int {
	qualified := make([]*entities.User, 0, len(users))
	for _, u := range users {
		if qualifies(u) {
			qualified = append(qualified, u)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return less(qualified[i], qualified[j])
	})
	for i, u := range qualified {
		if u.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// Board selects which ranking a leaderboard shows
type Board string

const (
	BoardLevels Board = "levels"
	BoardWeekly Board = "weekly"
	BoardPoints Board = "points"
	BoardSlots  Board = "slots"
)

// Leaderboard is one page of a guild ranking
type Leaderboard struct {
	Board        Board
	Users        []*entities.User
	TotalUsers   int
	CurrentPage  int
	TotalPages   int
	UsersPerPage int
	LastUpdated  time.Time
}

// GetLeaderboard returns one page of the guild's ranking for the given
// board, best first
func (s *Service) GetLeaderboard(ctx context.Context, guildID string, board Board, page, usersPerPage int) (*Leaderboard, error) {
	if page < 1 {
		page = 1
	}
	if usersPerPage < 1 {
		usersPerPage = 10
	}

	users, err := s.repo.ListGuildUsers(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error listing guild users: %w", err)
	}

	var qualifies func(*entities.User) bool
	var less func(a, b *entities.User) bool
	switch board {
	case BoardWeekly:
		qualifies = func(u *entities.User) bool { return u.WeeklyXP > 0 }
		less = func(a, b *entities.User) bool { return a.WeeklyXP > b.WeeklyXP }
	case BoardPoints:
		qualifies = func(u *entities.User) bool { return u.Rounds > 0 }
		less = func(a, b *entities.User) bool { return a.Points > b.Points }
	case BoardSlots:
		qualifies = func(u *entities.User) bool { return u.RoundsSlots > 0 }
		less = func(a, b *entities.User) bool { return a.MoneyEarnedSlots > b.MoneyEarnedSlots }
	default:
		qualifies = func(u *entities.User) bool { return true }
		less = func(a, b *entities.User) bool { return a.TotalXP > b.TotalXP }
	}

	ranked := make([]*entities.User, 0, len(users))
	for _, u := range users {
		if qualifies(u) {
			ranked = append(ranked, u)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	totalUsers := len(ranked)
	totalPages := (totalUsers + usersPerPage - 1) / usersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * usersPerPage
	end := start + usersPerPage
	if end > totalUsers {
		end = totalUsers
	}

	pageUsers := []*entities.User{}
	if start < totalUsers {
		pageUsers = ranked[start:end]
	}

	return &Leaderboard{
		Board:        board,
		Users:        pageUsers,
		TotalUsers:   totalUsers,
		CurrentPage:  page,
		TotalPages:   totalPages,
		UsersPerPage: usersPerPage,
		LastUpdated:  time.Now(),
	}, nil
}
