package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/certificate"
	"locality/pkg/platform/sentinel"
)

// InMemoryStore keeps certificate requests in memory, enforcing the
// one-active-request-per-(member, kind) rule under its mutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	certs map[uuid.UUID]certificate.Certificate
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{certs: make(map[uuid.UUID]certificate.Certificate)}
}

func (s *InMemoryStore) Save(_ context.Context, cert certificate.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cert.Status.Active() {
		for _, existing := range s.certs {
			if existing.MemberID == cert.MemberID && existing.Kind == cert.Kind &&
				existing.ID != cert.ID && existing.Status.Active() {
				return sentinel.ErrDuplicate
			}
		}
	}
	s.certs[cert.ID] = cert
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, cert certificate.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[cert.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.certs[cert.ID] = cert
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (certificate.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cert, ok := s.certs[id]; ok {
		return cert, nil
	}
	return certificate.Certificate{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindActiveByMember(_ context.Context, memberID uuid.UUID, kind certificate.Kind) (certificate.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cert := range s.certs {
		if cert.MemberID == memberID && cert.Kind == kind && cert.Status.Active() {
			return cert, nil
		}
	}
	return certificate.Certificate{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByHead(_ context.Context, headID uuid.UUID, kind certificate.Kind) ([]certificate.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []certificate.Certificate
	for _, cert := range s.certs {
		if cert.HeadID == headID && cert.Kind == kind {
			out = append(out, cert)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, kind certificate.Kind, status certificate.Status) ([]certificate.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []certificate.Certificate
	for _, cert := range s.certs {
		if cert.Kind == kind && cert.Status == status {
			out = append(out, cert)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListActiveByMemberAll(_ context.Context, memberID uuid.UUID) ([]certificate.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []certificate.Certificate
	for _, cert := range s.certs {
		if cert.MemberID == memberID && cert.Status.Active() {
			out = append(out, cert)
		}
	}
	return out, nil
}
