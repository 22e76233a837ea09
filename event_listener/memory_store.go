package event_listener

import (
	"context"
	"sync"

	"github.com/ferreirogomes/rtoken/models"
)

// MemoryStore guarda o histórico em memória, para o ledger em memória.
type MemoryStore struct {
	mu     sync.RWMutex
	events []models.Event
	seen   map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) SaveEvent(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[ev.ID]; ok {
		return nil
	}
	s.seen[ev.ID] = struct{}{}
	s.events = append(s.events, ev)
	return nil
}

// ListEvents devolve os eventos mais recentes primeiro (ordem inversa de chegada).
func (s *MemoryStore) ListEvents(_ context.Context, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit >= 0 && n > limit {
		n = limit
	}
	out := make([]models.Event, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
