package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/idcard"
	"locality/pkg/platform/sentinel"
)

// InMemoryStore keeps requests in memory, enforcing the one-active-request
// rule under its mutex the way the postgres partial index does.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]idcard.Request
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{requests: make(map[uuid.UUID]idcard.Request)}
}

func (s *InMemoryStore) Save(_ context.Context, req idcard.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Status.Active() {
		for _, existing := range s.requests {
			if existing.MemberID == req.MemberID && existing.ID != req.ID && existing.Status.Active() {
				return sentinel.ErrDuplicate
			}
		}
	}
	s.requests[req.ID] = req
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, req idcard.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = req
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (idcard.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[id]; ok {
		return req, nil
	}
	return idcard.Request{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindLatestByMember(_ context.Context, memberID, headID uuid.UUID) (idcard.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *idcard.Request
	for _, req := range s.requests {
		if req.MemberID != memberID || req.HeadID != headID {
			continue
		}
		if latest == nil || req.UpdatedAt.After(latest.UpdatedAt) {
			r := req
			latest = &r
		}
	}
	if latest == nil {
		return idcard.Request{}, sentinel.ErrNotFound
	}
	return *latest, nil
}

func (s *InMemoryStore) ListByHead(_ context.Context, headID uuid.UUID) ([]idcard.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []idcard.Request
	for _, req := range s.requests {
		if req.HeadID == headID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status idcard.Status) ([]idcard.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []idcard.Request
	for _, req := range s.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}
