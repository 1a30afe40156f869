// Package service runs the certificate request workflow. One Service handles
// all four kinds; kind-specific behavior is limited to messages and the
// post-approval hooks table.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"locality/internal/audit"
	"locality/internal/certificate"
	"locality/internal/directory"
	"locality/internal/platform/metrics"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/sentinel"
	"locality/pkg/requestcontext"
)

// Store persists certificate requests for all kinds.
type Store interface {
	Save(ctx context.Context, cert certificate.Certificate) error
	Update(ctx context.Context, cert certificate.Certificate) error
	FindByID(ctx context.Context, id uuid.UUID) (certificate.Certificate, error)
	FindActiveByMember(ctx context.Context, memberID uuid.UUID, kind certificate.Kind) (certificate.Certificate, error)
	ListByHead(ctx context.Context, headID uuid.UUID, kind certificate.Kind) ([]certificate.Certificate, error)
	ListByStatus(ctx context.Context, kind certificate.Kind, status certificate.Status) ([]certificate.Certificate, error)
	ListActiveByMemberAll(ctx context.Context, memberID uuid.UUID) ([]certificate.Certificate, error)
}

// Directory resolves ownership and display fields.
type Directory interface {
	MemberForHead(ctx context.Context, memberID, headID uuid.UUID) (directory.Member, error)
	GetHead(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error)
}

// Recorder receives audit events. Satisfied by the audit service.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// ApprovalHook runs when a certificate transitions into APPROVED. Only the
// death kind registers one: it marks the member deceased.
type ApprovalHook func(ctx context.Context, cert certificate.Certificate) error

type Service struct {
	store     Store
	directory Directory
	auditor   Recorder
	metrics   *metrics.Metrics
	hooks     map[certificate.Kind]ApprovalHook
}

func New(store Store, dir Directory, auditor Recorder, m *metrics.Metrics, hooks map[certificate.Kind]ApprovalHook) *Service {
	if hooks == nil {
		hooks = map[certificate.Kind]ApprovalHook{}
	}
	return &Service{store: store, directory: dir, auditor: auditor, metrics: m, hooks: hooks}
}

// Deceaser is the slice of the directory the death hook needs.
type Deceaser interface {
	MarkDeceased(ctx context.Context, memberID uuid.UUID) error
}

// DeathHook returns the approval hook for death certificates.
func DeathHook(dir Deceaser) ApprovalHook {
	return func(ctx context.Context, cert certificate.Certificate) error {
		return dir.MarkDeceased(ctx, cert.MemberID)
	}
}

// RequestParams is a head's application for one member and kind.
type RequestParams struct {
	MemberID    uuid.UUID
	Details     certificate.Details
	DocumentRef string
}

// Request creates a PENDING certificate request. The member must belong to
// the requesting head for every kind, and at most one active request may
// exist per (member, kind).
func (s *Service) Request(ctx context.Context, kind certificate.Kind, headID uuid.UUID, params RequestParams) (certificate.Certificate, error) {
	if !kind.Valid() {
		return certificate.Certificate{}, dErrors.New(dErrors.CodeValidation, "invalid certificate kind")
	}
	if params.Details.EventDate.IsZero() || params.Details.EventPlace == "" {
		return certificate.Certificate{}, dErrors.New(dErrors.CodeValidation, "event date and place are required")
	}

	if _, err := s.directory.MemberForHead(ctx, params.MemberID, headID); err != nil {
		return certificate.Certificate{}, err
	}

	existing, err := s.store.FindActiveByMember(ctx, params.MemberID, kind)
	switch {
	case err == nil:
		return certificate.Certificate{}, conflictFor(kind, existing.Status)
	case !errors.Is(err, sentinel.ErrNotFound):
		return certificate.Certificate{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up certificate request", err)
	}

	now := requestcontext.Now(ctx).UTC()
	cert := certificate.Certificate{
		ID:          uuid.New(),
		Kind:        kind,
		MemberID:    params.MemberID,
		HeadID:      headID,
		Status:      certificate.StatusPending,
		DocumentRef: params.DocumentRef,
		Details:     params.Details,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, cert); err != nil {
		// Partial unique index closes the check-then-create race.
		if errors.Is(err, sentinel.ErrDuplicate) {
			return certificate.Certificate{}, conflictFor(kind, certificate.StatusPending)
		}
		return certificate.Certificate{}, dErrors.Wrap(dErrors.CodeInternal, "failed to save certificate request", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionCertRequested,
		Entity:   "certificate",
		EntityID: cert.ID,
		Outcome:  string(certificate.StatusPending),
		Reason:   string(kind),
	})
	return cert, nil
}

// SetStatus applies an admin decision. The kind's approval hook fires only on
// a transition into APPROVED, never when re-approving an approved record.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status certificate.Status) (certificate.Certificate, error) {
	if !status.Valid() {
		return certificate.Certificate{}, dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return certificate.Certificate{}, dErrors.New(dErrors.CodeNotFound, "certificate request not found")
		}
		return certificate.Certificate{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up certificate request", err)
	}

	becameApproved := status == certificate.StatusApproved && cert.Status != certificate.StatusApproved
	cert.Status = status
	cert.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.store.Update(ctx, cert); err != nil {
		return certificate.Certificate{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update certificate request", err)
	}

	if becameApproved {
		if hook := s.hooks[cert.Kind]; hook != nil {
			if err := hook(ctx, cert); err != nil {
				return certificate.Certificate{}, dErrors.Wrap(dErrors.CodeInternal, "certificate approved but follow-up update failed", err)
			}
		}
	}

	s.metrics.WorkflowDecisions.WithLabelValues("certificate_"+string(cert.Kind), string(status)).Inc()
	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionCertDecision,
		Entity:   "certificate",
		EntityID: id,
		Outcome:  string(status),
		Reason:   string(cert.Kind),
	})
	return cert, nil
}

// Detail fetches one certificate joined with the owning head's name and the
// member's name and type, for display.
func (s *Service) Detail(ctx context.Context, id, ownerID uuid.UUID) (certificate.Detail, error) {
	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return certificate.Detail{}, dErrors.New(dErrors.CodeNotFound, "certificate request not found")
		}
		return certificate.Detail{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up certificate request", err)
	}
	if ownerID != uuid.Nil && cert.HeadID != ownerID {
		return certificate.Detail{}, dErrors.New(dErrors.CodeNotFound, "certificate request not found")
	}

	head, err := s.directory.GetHead(ctx, cert.HeadID)
	if err != nil {
		return certificate.Detail{}, err
	}
	member, err := s.directory.MemberForHead(ctx, cert.MemberID, cert.HeadID)
	if err != nil {
		return certificate.Detail{}, err
	}
	return certificate.Detail{
		Certificate:  cert,
		HeadFullName: head.FullName,
		MemberName:   member.FullName,
		MemberType:   string(member.Type),
	}, nil
}

// ListByHead lists a head's requests for one kind.
func (s *Service) ListByHead(ctx context.Context, headID uuid.UUID, kind certificate.Kind) ([]certificate.Certificate, error) {
	if !kind.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid certificate kind")
	}
	certs, err := s.store.ListByHead(ctx, headID, kind)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list certificate requests", err)
	}
	return certs, nil
}

// ListByStatus is the admin review queue for one kind.
func (s *Service) ListByStatus(ctx context.Context, kind certificate.Kind, status certificate.Status) ([]certificate.Certificate, error) {
	if !kind.Valid() || !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid certificate kind or status")
	}
	certs, err := s.store.ListByStatus(ctx, kind, status)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list certificate requests", err)
	}
	return certs, nil
}

// ActiveByMember returns every active certificate for the member across all
// kinds. Used by the household overview.
func (s *Service) ActiveByMember(ctx context.Context, memberID uuid.UUID) ([]certificate.Certificate, error) {
	certs, err := s.store.ListActiveByMemberAll(ctx, memberID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list certificate requests", err)
	}
	return certs, nil
}

func conflictFor(kind certificate.Kind, status certificate.Status) error {
	if status == certificate.StatusApproved {
		return dErrors.New(dErrors.CodeConflict, "a "+string(kind)+" certificate has already been approved")
	}
	return dErrors.New(dErrors.CodeConflict, "a "+string(kind)+" certificate request is already under review")
}
