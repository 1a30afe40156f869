package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"locality/internal/directory"
	"locality/pkg/platform/sentinel"
)

// InMemoryStore keeps heads and members in maps for tests and local runs. It
// mirrors the postgres store's uniqueness rules under a mutex so the service
// sees the same sentinel errors either way.
type InMemoryStore struct {
	mu      sync.RWMutex
	heads   map[uuid.UUID]directory.FamilyHead
	members map[uuid.UUID]directory.Member
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		heads:   make(map[uuid.UUID]directory.FamilyHead),
		members: make(map[uuid.UUID]directory.Member),
	}
}

func (s *InMemoryStore) SaveHead(_ context.Context, head directory.FamilyHead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.heads {
		if existing.Email == head.Email && existing.ID != head.ID {
			return sentinel.ErrDuplicate
		}
	}
	s.heads[head.ID] = head
	return nil
}

func (s *InMemoryStore) UpdateHead(_ context.Context, head directory.FamilyHead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.heads[head.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.heads {
		if existing.Email == head.Email && existing.ID != head.ID {
			return sentinel.ErrDuplicate
		}
	}
	s.heads[head.ID] = head
	return nil
}

func (s *InMemoryStore) FindHeadByID(_ context.Context, id uuid.UUID) (directory.FamilyHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if head, ok := s.heads[id]; ok {
		return head, nil
	}
	return directory.FamilyHead{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindHeadByEmail(_ context.Context, email string) (directory.FamilyHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, head := range s.heads {
		if head.Email == email {
			return head, nil
		}
	}
	return directory.FamilyHead{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListHeads(_ context.Context, includeRemoved bool) ([]directory.FamilyHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []directory.FamilyHead
	for _, head := range s.heads {
		if head.IsRemoved && !includeRemoved {
			continue
		}
		out = append(out, head)
	}
	return out, nil
}

func (s *InMemoryStore) SaveMember(_ context.Context, member directory.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.ID] = member
	return nil
}

func (s *InMemoryStore) UpdateMember(_ context.Context, member directory.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.members[member.ID] = member
	return nil
}

func (s *InMemoryStore) FindMemberByID(_ context.Context, id uuid.UUID) (directory.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if member, ok := s.members[id]; ok {
		return member, nil
	}
	return directory.Member{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListMembersByHead(_ context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []directory.Member
	for _, member := range s.members {
		if member.HeadID != headID {
			continue
		}
		if member.IsRemoved && !includeRemoved {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

func (s *InMemoryStore) ListMembersByApproval(_ context.Context, approval directory.ApprovalStatus) ([]directory.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []directory.Member
	for _, member := range s.members {
		if member.Approval != approval || member.IsRemoved {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}
