package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/repo"
)

var _ repo.UptimeStore = (*Store)(nil)

// Store keeps counters in process memory. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	counters map[string]domain.UptimeCounter
	saves    int
}

func New() *Store {
	return &Store{counters: make(map[string]domain.UptimeCounter)}
}

func (m *Store) Load(ctx context.Context) (map[string]domain.UptimeCounter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return repo.Clone(m.counters), nil
}

func (m *Store) Save(ctx context.Context, counters map[string]domain.UptimeCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = repo.Clone(counters)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Store) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
