package repository

import (
	"sync"
	"time"

	"TankWatch.api/internal/models"
)

// Store holds the most recent reading set. Implementations replace the
// whole record on Save; there are no partial updates.
type Store interface {
	Save(set models.TankSet)
	Latest() (models.TankSet, time.Time, bool)
}

// MemoryRepository is a thread-safe single-record store.
type MemoryRepository struct {
	mu         sync.RWMutex
	latest     *models.TankSet
	receivedAt time.Time
	now        func() time.Time // injectable for deterministic tests
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// Save replaces the stored reading set. Last write wins.
func (r *MemoryRepository) Save(set models.TankSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &set
	r.receivedAt = r.now()
}

// Latest returns a copy of the stored reading set, the time it was received,
// and false if nothing has been saved yet.
func (r *MemoryRepository) Latest() (models.TankSet, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return models.TankSet{}, time.Time{}, false
	}
	return *r.latest, r.receivedAt, true
}
