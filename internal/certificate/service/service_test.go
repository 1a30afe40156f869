package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/audit"
	"locality/internal/certificate"
	"locality/internal/certificate/store"
	"locality/internal/directory"
	"locality/internal/platform/metrics"
	dErrors "locality/pkg/domain-errors"
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

type directoryStub struct {
	heads   map[uuid.UUID]directory.FamilyHead
	members map[uuid.UUID]directory.Member
}

func (d *directoryStub) MemberForHead(_ context.Context, memberID, headID uuid.UUID) (directory.Member, error) {
	member, ok := d.members[memberID]
	if !ok || member.HeadID != headID {
		return directory.Member{}, dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return member, nil
}

func (d *directoryStub) GetHead(_ context.Context, id uuid.UUID) (directory.FamilyHead, error) {
	head, ok := d.heads[id]
	if !ok {
		return directory.FamilyHead{}, dErrors.New(dErrors.CodeNotFound, "family head not found")
	}
	return head, nil
}

// deceaserStub records which members the death hook marked.
type deceaserStub struct {
	mu     sync.Mutex
	marked []uuid.UUID
	err    error
}

func (d *deceaserStub) MarkDeceased(_ context.Context, memberID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.marked = append(d.marked, memberID)
	return nil
}

func (d *deceaserStub) markedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.marked)
}

type CertificateServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	directory *directoryStub
	recorder  *recorderStub
	deceaser  *deceaserStub
	service   *Service

	headID uuid.UUID
}

func TestCertificateServiceSuite(t *testing.T) {
	suite.Run(t, new(CertificateServiceSuite))
}

func (s *CertificateServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.recorder = &recorderStub{}
	s.deceaser = &deceaserStub{}

	s.headID = uuid.New()
	s.directory = &directoryStub{
		heads: map[uuid.UUID]directory.FamilyHead{
			s.headID: {ID: s.headID, FullName: "Ravi Kumar"},
		},
		members: map[uuid.UUID]directory.Member{},
	}
	s.service = New(s.store, s.directory, s.recorder, metrics.NewForTest(), map[certificate.Kind]ApprovalHook{
		certificate.KindDeath: DeathHook(s.deceaser),
	})
}

func (s *CertificateServiceSuite) addMember() uuid.UUID {
	id := uuid.New()
	s.directory.members[id] = directory.Member{
		ID:       id,
		HeadID:   s.headID,
		FullName: "Asha Verma",
		Type:     directory.MemberPermanent,
	}
	return id
}

func (s *CertificateServiceSuite) params(memberID uuid.UUID) RequestParams {
	return RequestParams{
		MemberID: memberID,
		Details: certificate.Details{
			EventDate:  time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
			EventPlace: "District Hospital",
		},
	}
}

func (s *CertificateServiceSuite) request(kind certificate.Kind, memberID uuid.UUID) certificate.Certificate {
	cert, err := s.service.Request(context.Background(), kind, s.headID, s.params(memberID))
	s.Require().NoError(err)
	return cert
}

func (s *CertificateServiceSuite) TestRequest() {
	ctx := context.Background()

	s.Run("creates a pending request", func() {
		cert := s.request(certificate.KindBirth, s.addMember())
		s.Equal(certificate.StatusPending, cert.Status)
		s.Equal(certificate.KindBirth, cert.Kind)
		s.Equal(s.headID, cert.HeadID)
	})

	s.Run("invalid kind is rejected", func() {
		_, err := s.service.Request(ctx, certificate.Kind("residence"), s.headID, s.params(s.addMember()))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "invalid certificate kind")
	})

	s.Run("event date and place are required", func() {
		params := s.params(s.addMember())
		params.Details.EventPlace = ""
		_, err := s.service.Request(ctx, certificate.KindBirth, s.headID, params)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "event date and place are required")
	})

	s.Run("foreign member reads as not found", func() {
		member := s.addMember()
		_, err := s.service.Request(ctx, certificate.KindMarriage, uuid.New(), s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *CertificateServiceSuite) TestOneActivePerMemberAndKind() {
	ctx := context.Background()

	s.Run("pending request blocks a duplicate", func() {
		member := s.addMember()
		s.request(certificate.KindBirth, member)

		_, err := s.service.Request(ctx, certificate.KindBirth, s.headID, s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "a birth certificate request is already under review")
	})

	s.Run("approved certificate blocks a duplicate", func() {
		member := s.addMember()
		cert := s.request(certificate.KindMarriage, member)
		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().NoError(err)

		_, err = s.service.Request(ctx, certificate.KindMarriage, s.headID, s.params(member))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "a marriage certificate has already been approved")
	})

	s.Run("different kinds do not collide", func() {
		member := s.addMember()
		s.request(certificate.KindBirth, member)
		_, err := s.service.Request(ctx, certificate.KindMarriage, s.headID, s.params(member))
		s.NoError(err)
	})

	s.Run("rejection frees the slot", func() {
		member := s.addMember()
		cert := s.request(certificate.KindDivorce, member)
		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusRejected)
		s.Require().NoError(err)

		_, err = s.service.Request(ctx, certificate.KindDivorce, s.headID, s.params(member))
		s.NoError(err)
	})
}

func (s *CertificateServiceSuite) TestDeathApprovalHook() {
	ctx := context.Background()

	s.Run("approving a death certificate marks the member deceased", func() {
		member := s.addMember()
		cert := s.request(certificate.KindDeath, member)

		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{member}, s.deceaser.marked)
	})

	s.Run("re-approving does not fire the hook again", func() {
		member := s.addMember()
		cert := s.request(certificate.KindDeath, member)

		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().NoError(err)
		before := s.deceaser.markedCount()

		_, err = s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().NoError(err)
		s.Equal(before, s.deceaser.markedCount())
	})

	s.Run("other kinds never fire the hook", func() {
		member := s.addMember()
		cert := s.request(certificate.KindBirth, member)
		before := s.deceaser.markedCount()

		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().NoError(err)
		s.Equal(before, s.deceaser.markedCount())
	})

	s.Run("hook failure surfaces as an internal error", func() {
		member := s.addMember()
		cert := s.request(certificate.KindDeath, member)
		s.deceaser.err = errors.New("directory down")
		defer func() { s.deceaser.err = nil }()

		_, err := s.service.SetStatus(ctx, cert.ID, certificate.StatusApproved)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "certificate approved but follow-up update failed")
	})
}

func (s *CertificateServiceSuite) TestSetStatusValidation() {
	ctx := context.Background()

	s.Run("invalid status is rejected", func() {
		cert := s.request(certificate.KindBirth, s.addMember())
		_, err := s.service.SetStatus(ctx, cert.ID, certificate.Status("SHELVED"))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("unknown certificate returns not found", func() {
		_, err := s.service.SetStatus(ctx, uuid.New(), certificate.StatusApproved)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *CertificateServiceSuite) TestDetail() {
	ctx := context.Background()
	member := s.addMember()
	cert := s.request(certificate.KindBirth, member)

	s.Run("joins head and member display fields", func() {
		detail, err := s.service.Detail(ctx, cert.ID, s.headID)
		s.Require().NoError(err)
		s.Equal(cert.ID, detail.ID)
		s.Equal("Ravi Kumar", detail.HeadFullName)
		s.Equal("Asha Verma", detail.MemberName)
		s.Equal(string(directory.MemberPermanent), detail.MemberType)
	})

	s.Run("admin reads any certificate", func() {
		_, err := s.service.Detail(ctx, cert.ID, uuid.Nil)
		s.NoError(err)
	})

	s.Run("foreign head reads as not found", func() {
		_, err := s.service.Detail(ctx, cert.ID, uuid.New())
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *CertificateServiceSuite) TestListing() {
	ctx := context.Background()
	member := s.addMember()
	cert := s.request(certificate.KindBirth, member)

	s.Run("lists a head's requests for one kind", func() {
		certs, err := s.service.ListByHead(ctx, s.headID, certificate.KindBirth)
		s.Require().NoError(err)
		s.Len(certs, 1)
		s.Equal(cert.ID, certs[0].ID)
	})

	s.Run("rejects an invalid kind", func() {
		_, err := s.service.ListByHead(ctx, s.headID, certificate.Kind("residence"))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("review queue filters by status", func() {
		certs, err := s.service.ListByStatus(ctx, certificate.KindBirth, certificate.StatusPending)
		s.Require().NoError(err)
		s.Len(certs, 1)

		certs, err = s.service.ListByStatus(ctx, certificate.KindBirth, certificate.StatusApproved)
		s.Require().NoError(err)
		s.Empty(certs)
	})

	s.Run("active certificates span kinds", func() {
		s.request(certificate.KindMarriage, member)
		certs, err := s.service.ActiveByMember(ctx, member)
		s.Require().NoError(err)
		s.Len(certs, 2)
	})
}
