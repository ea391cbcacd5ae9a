package results

import (
	"context"
	"sync"

	"github.com/pitboss-bot/pitboss/pkg/entities"
)

// MemoryRepository implements Repository with in-memory storage
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]*entities.RoundRecord // userID -> records, oldest first
}

// NewMemoryRepository creates a new in-memory archive
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string][]*entities.RoundRecord),
	}
}

// SaveRecord stores one archive entry
func (r *MemoryRepository) SaveRecord(ctx context.Context, record *entities.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.UserID] = append(r.records[record.UserID], record)
	return nil
}

// GetUserRecords retrieves the most recent records for a user
func (r *MemoryRepository) GetUserRecords(ctx context.Context, userID string, limit int) ([]*entities.RoundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.records[userID]
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	// Return newest first
	out := make([]*entities.RoundRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
