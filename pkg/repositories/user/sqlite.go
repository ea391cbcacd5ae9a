package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

const createUsersTableSQL = `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		xp INTEGER NOT NULL DEFAULT 0,
		pxp REAL NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		level_xp INTEGER NOT NULL DEFAULT 10,
		total_xp INTEGER NOT NULL DEFAULT 0,
		weekly_xp INTEGER NOT NULL DEFAULT 0,
		last_message TIMESTAMP,
		money INTEGER NOT NULL DEFAULT 0,
		rounds INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		ties INTEGER NOT NULL DEFAULT 0,
		blackjacks INTEGER NOT NULL DEFAULT 0,
		money_gained INTEGER NOT NULL DEFAULT 0,
		money_lost INTEGER NOT NULL DEFAULT 0,
		money_net INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		streak_current INTEGER NOT NULL DEFAULT 0,
		streak_best INTEGER NOT NULL DEFAULT 0,
		rounds_slots INTEGER NOT NULL DEFAULT 0,
		money_bet_slots INTEGER NOT NULL DEFAULT 0,
		money_spent_slots INTEGER NOT NULL DEFAULT 0,
		money_earned_slots INTEGER NOT NULL DEFAULT 0,
		money_net_slots INTEGER NOT NULL DEFAULT 0,
		max_won INTEGER NOT NULL DEFAULT 0,
		double1 INTEGER NOT NULL DEFAULT 0, double2 INTEGER NOT NULL DEFAULT 0,
		double3 INTEGER NOT NULL DEFAULT 0, double4 INTEGER NOT NULL DEFAULT 0,
		double5 INTEGER NOT NULL DEFAULT 0, double6 INTEGER NOT NULL DEFAULT 0,
		double7 INTEGER NOT NULL DEFAULT 0, double8 INTEGER NOT NULL DEFAULT 0,
		double9 INTEGER NOT NULL DEFAULT 0,
		triple1 INTEGER NOT NULL DEFAULT 0, triple2 INTEGER NOT NULL DEFAULT 0,
		triple3 INTEGER NOT NULL DEFAULT 0, triple4 INTEGER NOT NULL DEFAULT 0,
		triple5 INTEGER NOT NULL DEFAULT 0, triple6 INTEGER NOT NULL DEFAULT 0,
		triple7 INTEGER NOT NULL DEFAULT 0, triple8 INTEGER NOT NULL DEFAULT 0,
		triple9 INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, guild_id)
	)`

const createUsersIndexSQL = `
	CREATE INDEX IF NOT EXISTS idx_users_guild_id ON users(guild_id)`

// userColumns is the column list shared by every SELECT and INSERT. Order
// must match scanDest and saveArgs.
var userColumns = []string{
	"user_id", "guild_id",
	"xp", "pxp", "level", "level_xp", "total_xp", "weekly_xp", "last_message",
	"money", "rounds", "wins", "losses", "ties", "blackjacks",
	"money_gained", "money_lost", "money_net", "points",
	"streak_current", "streak_best",
	"rounds_slots", "money_bet_slots", "money_spent_slots",
	"money_earned_slots", "money_net_slots", "max_won",
	"double1", "double2", "double3", "double4", "double5",
	"double6", "double7", "double8", "double9",
	"triple1", "triple2", "triple3", "triple4", "triple5",
	"triple6", "triple7", "triple8", "triple9",
	"created_at", "updated_at",
}

// sqliteTimeFormat is SQLite's default timestamp layout
const sqliteTimeFormat = "2006-01-02 15:04:05"

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository at the given path
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec(createUsersTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating users table: %w", err)
	}

	if _, err := db.Exec(createUsersIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating users index: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// GetUser retrieves a user record by user and guild ID
func (r *SQLiteRepository) GetUser(ctx context.Context, userID, guildID string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = ? AND guild_id = ?`,
		strings.Join(userColumns, ", "))

	row := r.db.QueryRowContext(ctx, query, userID, guildID)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// SaveUser creates or updates a user record
func (r *SQLiteRepository) SaveUser(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userColumns)), ", ")

	// Update every non-key column on conflict
	assignments := make([]string, 0, len(userColumns)-2)
	for _, col := range userColumns[2:] {
		assignments = append(assignments, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	query := fmt.Sprintf(`
		INSERT INTO users (%s) VALUES (%s)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET %s`,
		strings.Join(userColumns, ", "), placeholders, strings.Join(assignments, ", "))

	if _, err := r.db.ExecContext(ctx, query, saveArgs(user)...); err != nil {
		log.Errorf("Error saving user %s in guild %s: %v", user.UserID, user.GuildID, err)
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

// ListGuildUsers retrieves all user records for a guild
func (r *SQLiteRepository) ListGuildUsers(ctx context.Context, guildID string) ([]*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE guild_id = ?`,
		strings.Join(userColumns, ", "))

	rows, err := r.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("error querying guild users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// ResetWeeklyXP zeroes the weekly XP counter for every user
func (r *SQLiteRepository) ResetWeeklyXP(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET weekly_xp = 0`); err != nil {
		return fmt.Errorf("error resetting weekly xp: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*entities.User, error) {
	var u entities.User
	var lastMessage, createdAt, updatedAt sql.NullString

	dest := []any{
		&u.UserID, &u.GuildID,
		&u.XP, &u.PXP, &u.Level, &u.LevelXP, &u.TotalXP, &u.WeeklyXP, &lastMessage,
		&u.Money, &u.Rounds, &u.Wins, &u.Losses, &u.Ties, &u.Blackjacks,
		&u.MoneyGained, &u.MoneyLost, &u.MoneyNet, &u.Points,
		&u.StreakCurrent, &u.StreakBest,
		&u.RoundsSlots, &u.MoneyBetSlots, &u.MoneySpentSlots,
		&u.MoneyEarnedSlots, &u.MoneyNetSlots, &u.MaxWon,
	}
	for i := range u.Doubles {
		dest = append(dest, &u.Doubles[i])
	}
	for i := range u.Triples {
		dest = append(dest, &u.Triples[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if u.LastMessage, err = parseTimestamp(lastMessage); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func saveArgs(u *entities.User) []any {
	args := []any{
		u.UserID, u.GuildID,
		u.XP, u.PXP, u.Level, u.LevelXP, u.TotalXP, u.WeeklyXP,
		formatTimestamp(u.LastMessage),
		u.Money, u.Rounds, u.Wins, u.Losses, u.Ties, u.Blackjacks,
		u.MoneyGained, u.MoneyLost, u.MoneyNet, u.Points,
		u.StreakCurrent, u.StreakBest,
		u.RoundsSlots, u.MoneyBetSlots, u.MoneySpentSlots,
		u.MoneyEarnedSlots, u.MoneyNetSlots, u.MaxWon,
	}
	for i := range u.Doubles {
		args = append(args, u.Doubles[i])
	}
	for i := range u.Triples {
		args = append(args, u.Triples[i])
	}
	args = append(args, u.CreatedAt.Format(sqliteTimeFormat), u.UpdatedAt.Format(sqliteTimeFormat))
	return args
}

func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(sqliteTimeFormat)
}

// parseTimestamp handles the formats SQLite may hand back depending on how
// the value was written
func parseTimestamp(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}

	formats := []string{
		sqliteTimeFormat,
		"2006-01-02T15:04:05Z",
		time.RFC3339,
	}

	var parseErr error
	for _, format := range formats {
		t, err := time.Parse(format, v.String)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", v.String, parseErr)
}
