package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/audit"
	"locality/internal/directory"
	"locality/internal/idcard"
	"locality/internal/idcard/store"
	"locality/internal/platform/metrics"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/requestcontext"
)

type recorderStub struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorderStub) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorderStub) lastAction() audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Action
}

// directoryStub resolves members the way the directory service would: a
// foreign or unknown member reads as not found.
type directoryStub struct {
	members map[uuid.UUID]directory.Member
}

func (d *directoryStub) MemberForHead(_ context.Context, memberID, headID uuid.UUID) (directory.Member, error) {
	member, ok := d.members[memberID]
	if !ok || member.HeadID != headID {
		return directory.Member{}, dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return member, nil
}

type IDCardServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	directory *directoryStub
	recorder  *recorderStub
	service   *Service

	headID   uuid.UUID
	memberID uuid.UUID
}

func TestIDCardServiceSuite(t *testing.T) {
	suite.Run(t, new(IDCardServiceSuite))
}

func (s *IDCardServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.directory = &directoryStub{members: map[uuid.UUID]directory.Member{}}
	s.recorder = &recorderStub{}
	s.service = New(s.store, s.directory, s.recorder, metrics.NewForTest())

	s.headID = uuid.New()
	s.memberID = s.addMember(directory.ApprovalApproved, false)
}

func (s *IDCardServiceSuite) addMember(approval directory.ApprovalStatus, removed bool) uuid.UUID {
	id := uuid.New()
	s.directory.members[id] = directory.Member{
		ID:        id,
		HeadID:    s.headID,
		FullName:  "Asha Verma",
		Approval:  approval,
		IsRemoved: removed,
	}
	return id
}

func (s *IDCardServiceSuite) params(memberID uuid.UUID) SubmitParams {
	return SubmitParams{
		MemberID: memberID,
		Applicant: idcard.Applicant{
			FullName: "Asha Verma",
			Address:  "12 Canal Road",
		},
		CardType: "standard",
	}
}

func (s *IDCardServiceSuite) submit() idcard.Request {
	req, err := s.service.CreateOrResubmit(context.Background(), s.headID, s.params(s.memberID))
	s.Require().NoError(err)
	return req
}

func (s *IDCardServiceSuite) setStatus(id uuid.UUID, status idcard.Status, expiresAt *time.Time) idcard.Request {
	req, err := s.service.SetStatus(context.Background(), id, status, expiresAt)
	s.Require().NoError(err)
	return req
}

func (s *IDCardServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("first submission creates a pending request", func() {
		req := s.submit()
		s.Equal(idcard.StatusPending, req.Status)
		s.Equal(s.memberID, req.MemberID)
		s.Equal(s.headID, req.HeadID)
		s.Nil(req.ExpiresAt)
		s.Equal(audit.ActionIDRequested, s.recorder.lastAction())
	})

	s.Run("applicant fields are required", func() {
		params := s.params(s.memberID)
		params.Applicant.Address = ""
		_, err := s.service.CreateOrResubmit(ctx, s.headID, params)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "applicant full name and address are required")
	})

	s.Run("unapproved member cannot apply", func() {
		pending := s.addMember(directory.ApprovalPending, false)
		_, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(pending))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "member must be approved")
	})

	s.Run("removed member cannot apply", func() {
		removed := s.addMember(directory.ApprovalApproved, true)
		_, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(removed))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("foreign member reads as not found", func() {
		_, err := s.service.CreateOrResubmit(ctx, uuid.New(), s.params(s.memberID))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *IDCardServiceSuite) submitFor(memberID uuid.UUID) idcard.Request {
	req, err := s.service.CreateOrResubmit(context.Background(), s.headID, s.params(memberID))
	s.Require().NoError(err)
	return req
}

func (s *IDCardServiceSuite) TestOneCurrentRequestRule() {
	ctx := context.Background()

	s.Run("pending request blocks a second submission", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		s.submitFor(member)
		_, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "already under review")
	})

	s.Run("approved card blocks a new application", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		req := s.submitFor(member)
		s.setStatus(req.ID, idcard.StatusApproved, nil)

		_, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "already been approved")
	})

	s.Run("expired card with future expiry blocks renewal", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		req := s.submitFor(member)
		future := time.Now().Add(24 * time.Hour).UTC()
		s.setStatus(req.ID, idcard.StatusExpired, &future)

		_, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "has not reached its expiry date")
	})
}

func (s *IDCardServiceSuite) TestResubmission() {
	ctx := context.Background()

	s.Run("rejected request is reused in place", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		first := s.submitFor(member)
		s.setStatus(first.ID, idcard.StatusRejected, nil)

		params := s.params(member)
		params.Applicant.Occupation = "teacher"
		resubmitted, err := s.service.CreateOrResubmit(ctx, s.headID, params)
		s.Require().NoError(err)
		s.Equal(first.ID, resubmitted.ID)
		s.Equal(first.CreatedAt, resubmitted.CreatedAt)
		s.Equal(idcard.StatusPending, resubmitted.Status)
		s.Equal("teacher", resubmitted.Applicant.Occupation)
		s.Equal(audit.ActionIDResubmitted, s.recorder.lastAction())
	})

	s.Run("expired card past its expiry is renewable", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		req := s.submitFor(member)
		past := time.Now().Add(-24 * time.Hour).UTC()
		s.setStatus(req.ID, idcard.StatusExpired, &past)

		renewed, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(member))
		s.Require().NoError(err)
		s.Equal(req.ID, renewed.ID)
		s.Equal(idcard.StatusPending, renewed.Status)
		s.Nil(renewed.ExpiresAt)
	})

	s.Run("resubmission clears restoration metadata", func() {
		member := s.addMember(directory.ApprovalApproved, false)
		req := s.submitFor(member)
		restoredAt := time.Now().UTC()
		req.Status = idcard.StatusRejected
		req.Restored = true
		req.RestoredAt = &restoredAt
		req.RestorePayment = "receipt-17"
		s.Require().NoError(s.store.Update(ctx, req))

		resubmitted, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(member))
		s.Require().NoError(err)
		s.False(resubmitted.Restored)
		s.Nil(resubmitted.RestoredAt)
		s.Empty(resubmitted.RestorePayment)
	})
}

func (s *IDCardServiceSuite) TestSetStatus() {
	ctx := context.Background()

	s.Run("records the decision and expiry", func() {
		req := s.submitFor(s.addMember(directory.ApprovalApproved, false))
		expiry := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
		updated := s.setStatus(req.ID, idcard.StatusApproved, &expiry)
		s.Equal(idcard.StatusApproved, updated.Status)
		s.Require().NotNil(updated.ExpiresAt)
		s.True(updated.ExpiresAt.Equal(expiry))
		s.Equal(audit.ActionIDDecision, s.recorder.lastAction())
	})

	s.Run("nil expiry leaves the stored one alone", func() {
		req := s.submitFor(s.addMember(directory.ApprovalApproved, false))
		expiry := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
		s.setStatus(req.ID, idcard.StatusApproved, &expiry)

		updated := s.setStatus(req.ID, idcard.StatusExpired, nil)
		s.Require().NotNil(updated.ExpiresAt)
		s.True(updated.ExpiresAt.Equal(expiry))
	})

	s.Run("invalid status is rejected", func() {
		req := s.submitFor(s.addMember(directory.ApprovalApproved, false))
		_, err := s.service.SetStatus(ctx, req.ID, idcard.Status("SHREDDED"), nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("unknown request returns not found", func() {
		_, err := s.service.SetStatus(ctx, uuid.New(), idcard.StatusApproved, nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *IDCardServiceSuite) TestGetScoping() {
	ctx := context.Background()
	req := s.submit()

	s.Run("owner and admin can read", func() {
		_, err := s.service.Get(ctx, req.ID, s.headID)
		s.NoError(err)
		_, err = s.service.Get(ctx, req.ID, uuid.Nil)
		s.NoError(err)
	})

	s.Run("foreign head reads as not found", func() {
		_, err := s.service.Get(ctx, req.ID, uuid.New())
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *IDCardServiceSuite) TestActiveByMember() {
	ctx := context.Background()

	s.Run("nil when the member has no request", func() {
		req, err := s.service.ActiveByMember(ctx, s.memberID, s.headID)
		s.Require().NoError(err)
		s.Nil(req)
	})

	s.Run("returns a pending request", func() {
		submitted := s.submit()
		req, err := s.service.ActiveByMember(ctx, s.memberID, s.headID)
		s.Require().NoError(err)
		s.Require().NotNil(req)
		s.Equal(submitted.ID, req.ID)
	})

	s.Run("nil once the request is rejected", func() {
		latest, err := s.store.FindLatestByMember(ctx, s.memberID, s.headID)
		s.Require().NoError(err)
		s.setStatus(latest.ID, idcard.StatusRejected, nil)

		req, err := s.service.ActiveByMember(ctx, s.memberID, s.headID)
		s.Require().NoError(err)
		s.Nil(req)
	})
}

func (s *IDCardServiceSuite) TestContextClock() {
	// The workflow reads its clock from the request context so an expiry
	// decision made "at" a given time is reproducible.
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	req, err := s.service.CreateOrResubmit(ctx, s.headID, s.params(s.memberID))
	s.Require().NoError(err)
	s.True(req.CreatedAt.Equal(at))
	s.True(req.UpdatedAt.Equal(at))
}
