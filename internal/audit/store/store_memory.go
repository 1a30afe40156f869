package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/audit"
)

// InMemoryStore keeps audit events in memory for tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entity string, entityID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event, oldest first. Test helper.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
