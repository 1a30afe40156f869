//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/directory"
	"locality/internal/directory/store"
	"locality/pkg/platform/sentinel"
	"locality/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
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
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "members", "family_heads")
	s.Require().NoError(err)
}

func newTestHead(email string) directory.FamilyHead {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return directory.FamilyHead{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "bcrypt-hash",
		FullName:     "Ravi Kumar",
		Phone:        "555-0100",
		HouseNumber:  "12-B",
		FamilySize:   4,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestMember(headID uuid.UUID) directory.Member {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return directory.Member{
		ID:           uuid.New(),
		HeadID:       headID,
		FullName:     "Asha Verma",
		BirthDate:    time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Type:         directory.MemberPermanent,
		Relationship: "daughter",
		Status:       directory.StatusActive,
		Tenure:       directory.TenureMember,
		Approval:     directory.ApprovalPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestHeadRoundTrip() {
	ctx := context.Background()
	head := newTestHead("roundtrip@example.com")
	s.Require().NoError(s.store.SaveHead(ctx, head))

	s.Run("find by id", func() {
		found, err := s.store.FindHeadByID(ctx, head.ID)
		s.Require().NoError(err)
		s.Equal(head.Email, found.Email)
		s.Equal(head.FullName, found.FullName)
		s.Equal(head.FamilySize, found.FamilySize)
	})

	s.Run("find by email", func() {
		found, err := s.store.FindHeadByEmail(ctx, "roundtrip@example.com")
		s.Require().NoError(err)
		s.Equal(head.ID, found.ID)
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.store.FindHeadByID(ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("update persists", func() {
		head.FullName = "Renamed Head"
		head.IsRemoved = true
		s.Require().NoError(s.store.UpdateHead(ctx, head))

		found, err := s.store.FindHeadByID(ctx, head.ID)
		s.Require().NoError(err)
		s.Equal("Renamed Head", found.FullName)
		s.True(found.IsRemoved)
	})
}

func (s *PostgresStoreSuite) TestHeadEmailUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveHead(ctx, newTestHead("unique@example.com")))

	err := s.store.SaveHead(ctx, newTestHead("unique@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrDuplicate)
}

func (s *PostgresStoreSuite) TestListHeads() {
	ctx := context.Background()
	active := newTestHead("active@example.com")
	removed := newTestHead("removed@example.com")
	removed.IsRemoved = true
	s.Require().NoError(s.store.SaveHead(ctx, active))
	s.Require().NoError(s.store.SaveHead(ctx, removed))

	heads, err := s.store.ListHeads(ctx, false)
	s.Require().NoError(err)
	s.Len(heads, 1)
	s.Equal(active.ID, heads[0].ID)

	heads, err = s.store.ListHeads(ctx, true)
	s.Require().NoError(err)
	s.Len(heads, 2)
}

func (s *PostgresStoreSuite) TestMemberRoundTrip() {
	ctx := context.Background()
	head := newTestHead("household@example.com")
	s.Require().NoError(s.store.SaveHead(ctx, head))

	member := newTestMember(head.ID)
	s.Require().NoError(s.store.SaveMember(ctx, member))

	s.Run("find by id", func() {
		found, err := s.store.FindMemberByID(ctx, member.ID)
		s.Require().NoError(err)
		s.Equal(member.FullName, found.FullName)
		s.Equal(member.HeadID, found.HeadID)
		s.True(found.BirthDate.Equal(member.BirthDate))
	})

	s.Run("update persists the approval decision", func() {
		member.Approval = directory.ApprovalApproved
		s.Require().NoError(s.store.UpdateMember(ctx, member))

		found, err := s.store.FindMemberByID(ctx, member.ID)
		s.Require().NoError(err)
		s.Equal(directory.ApprovalApproved, found.Approval)
	})

	s.Run("approval listing spans households", func() {
		other := newTestMember(head.ID)
		s.Require().NoError(s.store.SaveMember(ctx, other))

		pending, err := s.store.ListMembersByApproval(ctx, directory.ApprovalPending)
		s.Require().NoError(err)
		s.Len(pending, 1)
		s.Equal(other.ID, pending[0].ID)
	})

	s.Run("removed members hidden by default", func() {
		member.IsRemoved = true
		s.Require().NoError(s.store.UpdateMember(ctx, member))

		members, err := s.store.ListMembersByHead(ctx, head.ID, false)
		s.Require().NoError(err)
		s.Len(members, 1)

		members, err = s.store.ListMembersByHead(ctx, head.ID, true)
		s.Require().NoError(err)
		s.Len(members, 2)
	})
}
