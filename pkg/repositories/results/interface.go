package results

import (
	"context"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// Repository defines storage operations for the round/spin archive. The
// archive is written best-effort after each resolution; the user ledger
// remains the source of truth for aggregate statistics.
type Repository interface {
	// SaveRecord stores one archive entry
	SaveRecord(ctx context.Context, record *entities.RoundRecord) error

	// GetUserRecords retrieves the most recent records for a user
	GetUserRecords(ctx context.Context, userID string, limit int) ([]*entities.RoundRecord, error)

	// Close closes any resources used by the repository
	Close() error
}
