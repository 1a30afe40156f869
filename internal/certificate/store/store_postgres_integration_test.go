//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/certificate"
	"locality/internal/certificate/store"
	"locality/internal/directory"
	dirstore "locality/internal/directory/store"
	"locality/pkg/platform/sentinel"
	"locality/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *store.PostgresStore
	directory *dirstore.PostgresStore

	headID   uuid.UUID
	memberID uuid.UUID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.directory = dirstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "certificates", "members", "family_heads")
	s.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.headID = uuid.New()
	s.Require().NoError(s.directory.SaveHead(ctx, directory.FamilyHead{
		ID:           s.headID,
		Email:        "head@example.com",
		PasswordHash: "bcrypt-hash",
		FullName:     "Ravi Kumar",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	s.memberID = uuid.New()
	s.Require().NoError(s.directory.SaveMember(ctx, directory.Member{
		ID:           s.memberID,
		HeadID:       s.headID,
		FullName:     "Asha Verma",
		BirthDate:    time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Type:         directory.MemberPermanent,
		Relationship: "daughter",
		Status:       directory.StatusActive,
		Tenure:       directory.TenureMember,
		Approval:     directory.ApprovalApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func (s *PostgresStoreSuite) newCert(kind certificate.Kind, status certificate.Status) certificate.Certificate {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return certificate.Certificate{
		ID:       uuid.New(),
		Kind:     kind,
		MemberID: s.memberID,
		HeadID:   s.headID,
		Status:   status,
		Details: certificate.Details{
			EventDate:  time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
			EventPlace: "District Hospital",
			PartyName:  "Asha Verma",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	cert := s.newCert(certificate.KindBirth, certificate.StatusPending)
	s.Require().NoError(s.store.Save(ctx, cert))

	found, err := s.store.FindByID(ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(cert.Kind, found.Kind)
	s.Equal(cert.Details.EventPlace, found.Details.EventPlace)
	s.True(found.Details.EventDate.Equal(cert.Details.EventDate))

	found.Status = certificate.StatusApproved
	s.Require().NoError(s.store.Update(ctx, found))

	updated, err := s.store.FindByID(ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(certificate.StatusApproved, updated.Status)
}

// The partial unique index on (member_id, kind) for active certificates
// closes the concurrent-request race, so it gets exercised against real
// Postgres.
func (s *PostgresStoreSuite) TestOneActivePerMemberAndKindIndex() {
	ctx := context.Background()
	first := s.newCert(certificate.KindDeath, certificate.StatusPending)
	s.Require().NoError(s.store.Save(ctx, first))

	s.Run("same kind conflicts while active", func() {
		err := s.store.Save(ctx, s.newCert(certificate.KindDeath, certificate.StatusPending))
		s.Require().ErrorIs(err, sentinel.ErrDuplicate)
	})

	s.Run("another kind is free", func() {
		s.NoError(s.store.Save(ctx, s.newCert(certificate.KindMarriage, certificate.StatusPending)))
	})

	s.Run("rejecting frees the slot", func() {
		first.Status = certificate.StatusRejected
		s.Require().NoError(s.store.Update(ctx, first))

		s.NoError(s.store.Save(ctx, s.newCert(certificate.KindDeath, certificate.StatusPending)))
	})
}

func (s *PostgresStoreSuite) TestQueries() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newCert(certificate.KindBirth, certificate.StatusApproved)))
	s.Require().NoError(s.store.Save(ctx, s.newCert(certificate.KindMarriage, certificate.StatusPending)))

	s.Run("find active by member and kind", func() {
		found, err := s.store.FindActiveByMember(ctx, s.memberID, certificate.KindBirth)
		s.Require().NoError(err)
		s.Equal(certificate.KindBirth, found.Kind)

		_, err = s.store.FindActiveByMember(ctx, s.memberID, certificate.KindDivorce)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("list by head and kind", func() {
		certs, err := s.store.ListByHead(ctx, s.headID, certificate.KindBirth)
		s.Require().NoError(err)
		s.Len(certs, 1)
	})

	s.Run("list by status", func() {
		certs, err := s.store.ListByStatus(ctx, certificate.KindMarriage, certificate.StatusPending)
		s.Require().NoError(err)
		s.Len(certs, 1)

		certs, err = s.store.ListByStatus(ctx, certificate.KindMarriage, certificate.StatusApproved)
		s.Require().NoError(err)
		s.Empty(certs)
	})

	s.Run("active certificates span kinds", func() {
		certs, err := s.store.ListActiveByMemberAll(ctx, s.memberID)
		s.Require().NoError(err)
		s.Len(certs, 2)
	})
}
