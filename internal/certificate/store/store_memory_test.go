package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/certificate"
	"locality/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *MemoryStoreSuite) cert(memberID uuid.UUID, kind certificate.Kind, status certificate.Status) certificate.Certificate {
	now := time.Now().UTC()
	return certificate.Certificate{
		ID:        uuid.New(),
		Kind:      kind,
		MemberID:  memberID,
		HeadID:    uuid.New(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *MemoryStoreSuite) TestSaveEnforcesOneActivePerMemberAndKind() {
	ctx := context.Background()
	memberID := uuid.New()

	s.Require().NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindBirth, certificate.StatusPending)))

	s.Run("same kind conflicts while active", func() {
		err := s.store.Save(ctx, s.cert(memberID, certificate.KindBirth, certificate.StatusApproved))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("another kind does not conflict", func() {
		s.NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindDeath, certificate.StatusPending)))
	})

	s.Run("rejected records do not hold the slot", func() {
		other := uuid.New()
		s.Require().NoError(s.store.Save(ctx, s.cert(other, certificate.KindMarriage, certificate.StatusRejected)))
		s.NoError(s.store.Save(ctx, s.cert(other, certificate.KindMarriage, certificate.StatusPending)))
	})
}

func (s *MemoryStoreSuite) TestFindActiveByMember() {
	ctx := context.Background()
	memberID := uuid.New()

	s.Run("no active record is ErrNotFound", func() {
		_, err := s.store.FindActiveByMember(ctx, memberID, certificate.KindBirth)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejected records are invisible", func() {
		s.Require().NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindBirth, certificate.StatusRejected)))
		_, err := s.store.FindActiveByMember(ctx, memberID, certificate.KindBirth)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds the pending record for the kind", func() {
		saved := s.cert(memberID, certificate.KindDeath, certificate.StatusPending)
		s.Require().NoError(s.store.Save(ctx, saved))

		found, err := s.store.FindActiveByMember(ctx, memberID, certificate.KindDeath)
		s.Require().NoError(err)
		s.Equal(saved.ID, found.ID)
	})
}

func (s *MemoryStoreSuite) TestListActiveByMemberAll() {
	ctx := context.Background()
	memberID := uuid.New()

	s.Require().NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindBirth, certificate.StatusApproved)))
	s.Require().NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindMarriage, certificate.StatusPending)))
	s.Require().NoError(s.store.Save(ctx, s.cert(memberID, certificate.KindDivorce, certificate.StatusRejected)))
	s.Require().NoError(s.store.Save(ctx, s.cert(uuid.New(), certificate.KindBirth, certificate.StatusPending)))

	active, err := s.store.ListActiveByMemberAll(ctx, memberID)
	s.Require().NoError(err)
	s.Len(active, 2)
}

func (s *MemoryStoreSuite) TestUpdate() {
	ctx := context.Background()
	saved := s.cert(uuid.New(), certificate.KindBirth, certificate.StatusPending)
	s.Require().NoError(s.store.Save(ctx, saved))

	saved.Status = certificate.StatusApproved
	s.Require().NoError(s.store.Update(ctx, saved))

	found, err := s.store.FindByID(ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal(certificate.StatusApproved, found.Status)

	s.Require().ErrorIs(s.store.Update(ctx, s.cert(uuid.New(), certificate.KindBirth, certificate.StatusPending)), sentinel.ErrNotFound)
}
