package admin

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/auth"
	"locality/pkg/platform/sentinel"
)

// InMemoryStore keeps admin accounts in memory for tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]auth.Admin
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{admins: make(map[uuid.UUID]auth.Admin)}
}

func (s *InMemoryStore) Save(_ context.Context, admin auth.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if existing.Email == admin.Email && existing.ID != admin.ID {
			return sentinel.ErrDuplicate
		}
	}
	s.admins[admin.ID] = admin
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (auth.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return auth.Admin{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (auth.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if admin, ok := s.admins[id]; ok {
		return admin, nil
	}
	return auth.Admin{}, sentinel.ErrNotFound
}
