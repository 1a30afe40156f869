// Package service decides when an identity-card request may be created,
// resubmitted, or transitioned.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"locality/internal/audit"
	"locality/internal/directory"
	"locality/internal/idcard"
	"locality/internal/platform/metrics"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/sentinel"
	"locality/pkg/requestcontext"
)

// Store persists identity-card requests.
type Store interface {
	Save(ctx context.Context, req idcard.Request) error
	Update(ctx context.Context, req idcard.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (idcard.Request, error)
	FindLatestByMember(ctx context.Context, memberID, headID uuid.UUID) (idcard.Request, error)
	ListByHead(ctx context.Context, headID uuid.UUID) ([]idcard.Request, error)
	ListByStatus(ctx context.Context, status idcard.Status) ([]idcard.Request, error)
}

// Directory resolves member ownership before a request is accepted.
type Directory interface {
	MemberForHead(ctx context.Context, memberID, headID uuid.UUID) (directory.Member, error)
}

// Recorder receives audit events. Satisfied by the audit service.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

type Service struct {
	store     Store
	directory Directory
	auditor   Recorder
	metrics   *metrics.Metrics
}

func New(store Store, dir Directory, auditor Recorder, m *metrics.Metrics) *Service {
	return &Service{store: store, directory: dir, auditor: auditor, metrics: m}
}

// SubmitParams is the head's application for one member.
type SubmitParams struct {
	MemberID  uuid.UUID
	Applicant idcard.Applicant
	CardType  string
	PhotoRef  string
}

// CreateOrResubmit applies the one-current-request rule:
//
//	no request            -> create PENDING
//	PENDING exists        -> Conflict (under review)
//	APPROVED exists       -> Conflict (already approved)
//	REJECTED              -> reuse the record, back to PENDING
//	EXPIRED, expiry passed-> reuse the record, back to PENDING
//	EXPIRED, expiry ahead -> Conflict (card still valid)
//
// Resubmission replaces the applicant fields in place and clears restoration
// metadata; the record ID and CreatedAt survive.
func (s *Service) CreateOrResubmit(ctx context.Context, headID uuid.UUID, params SubmitParams) (idcard.Request, error) {
	if params.Applicant.FullName == "" || params.Applicant.Address == "" {
		return idcard.Request{}, dErrors.New(dErrors.CodeValidation, "applicant full name and address are required")
	}

	member, err := s.directory.MemberForHead(ctx, params.MemberID, headID)
	if err != nil {
		return idcard.Request{}, err
	}
	if member.Approval != directory.ApprovalApproved || member.IsRemoved {
		return idcard.Request{}, dErrors.New(dErrors.CodeValidation, "member must be approved before requesting an identity card")
	}

	now := requestcontext.Now(ctx).UTC()
	existing, err := s.store.FindLatestByMember(ctx, params.MemberID, headID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return s.create(ctx, headID, params, now)
	case err != nil:
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up identity card request", err)
	}

	switch existing.Status {
	case idcard.StatusPending:
		return idcard.Request{}, dErrors.New(dErrors.CodeConflict, "an identity card request is already under review")
	case idcard.StatusApproved:
		return idcard.Request{}, dErrors.New(dErrors.CodeConflict, "an identity card has already been approved")
	case idcard.StatusExpired:
		if existing.ExpiresAt != nil && existing.ExpiresAt.After(now) {
			return idcard.Request{}, dErrors.New(dErrors.CodeConflict, "the current identity card has not reached its expiry date")
		}
	}

	// REJECTED, or EXPIRED and past expiry: same record, fresh application.
	existing.Applicant = params.Applicant
	existing.CardType = params.CardType
	if params.PhotoRef != "" {
		existing.PhotoRef = params.PhotoRef
	}
	existing.Status = idcard.StatusPending
	existing.ExpiresAt = nil
	existing.Restored = false
	existing.RestoredAt = nil
	existing.RestorePayment = ""
	existing.UpdatedAt = now

	if err := s.store.Update(ctx, existing); err != nil {
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to resubmit identity card request", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionIDResubmitted,
		Entity:   "id_request",
		EntityID: existing.ID,
		Outcome:  string(idcard.StatusPending),
	})
	return existing, nil
}

func (s *Service) create(ctx context.Context, headID uuid.UUID, params SubmitParams, now time.Time) (idcard.Request, error) {
	req := idcard.Request{
		ID:        uuid.New(),
		MemberID:  params.MemberID,
		HeadID:    headID,
		Applicant: params.Applicant,
		CardType:  params.CardType,
		PhotoRef:  params.PhotoRef,
		Status:    idcard.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, req); err != nil {
		// The partial unique index closes the check-then-create race: a
		// concurrent submission for the same member loses here.
		if errors.Is(err, sentinel.ErrDuplicate) {
			return idcard.Request{}, dErrors.New(dErrors.CodeConflict, "an identity card request is already under review")
		}
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to save identity card request", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionIDRequested,
		Entity:   "id_request",
		EntityID: req.ID,
		Outcome:  string(idcard.StatusPending),
	})
	return req, nil
}

// SetStatus applies an admin decision. Any target status is accepted: the
// admin override path is deliberately unguarded, and every transition is
// audited. An expiry date may accompany APPROVED or EXPIRED.
func (s *Service) SetStatus(ctx context.Context, requestID uuid.UUID, status idcard.Status, expiresAt *time.Time) (idcard.Request, error) {
	if !status.Valid() {
		return idcard.Request{}, dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return idcard.Request{}, dErrors.New(dErrors.CodeNotFound, "identity card request not found")
		}
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up identity card request", err)
	}

	req.Status = status
	if expiresAt != nil {
		req.ExpiresAt = expiresAt
	}
	req.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.store.Update(ctx, req); err != nil {
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update identity card request", err)
	}

	s.metrics.WorkflowDecisions.WithLabelValues("idcard", string(status)).Inc()
	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionIDDecision,
		Entity:   "id_request",
		EntityID: requestID,
		Outcome:  string(status),
	})
	return req, nil
}

// Get fetches one request, scoped to ownerID when non-nil.
func (s *Service) Get(ctx context.Context, requestID, ownerID uuid.UUID) (idcard.Request, error) {
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return idcard.Request{}, dErrors.New(dErrors.CodeNotFound, "identity card request not found")
		}
		return idcard.Request{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up identity card request", err)
	}
	if ownerID != uuid.Nil && req.HeadID != ownerID {
		return idcard.Request{}, dErrors.New(dErrors.CodeNotFound, "identity card request not found")
	}
	return req, nil
}

// ListByHead lists a head's requests.
func (s *Service) ListByHead(ctx context.Context, headID uuid.UUID) ([]idcard.Request, error) {
	reqs, err := s.store.ListByHead(ctx, headID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list identity card requests", err)
	}
	return reqs, nil
}

// ListByStatus is the admin review queue.
func (s *Service) ListByStatus(ctx context.Context, status idcard.Status) ([]idcard.Request, error) {
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	reqs, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list identity card requests", err)
	}
	return reqs, nil
}

// ActiveByMember returns the member's PENDING or APPROVED request, if any.
// Used by the household overview.
func (s *Service) ActiveByMember(ctx context.Context, memberID, headID uuid.UUID) (*idcard.Request, error) {
	req, err := s.store.FindLatestByMember(ctx, memberID, headID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to look up identity card request", err)
	}
	if !req.Status.Active() {
		return nil, nil
	}
	return &req, nil
}
