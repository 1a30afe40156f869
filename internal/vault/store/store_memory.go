package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/vault"
)

// InMemoryStore keeps vault documents in memory for tests and local runs.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs []vault.Document
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, doc vault.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *InMemoryStore) ListByHead(_ context.Context, headID uuid.UUID) ([]vault.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []vault.Document
	for i := len(s.docs) - 1; i >= 0; i-- {
		if s.docs[i].HeadID == headID {
			out = append(out, s.docs[i])
		}
	}
	return out, nil
}
