package vault

import (
	"context"

	"github.com/google/uuid"

	"locality/internal/audit"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/requestcontext"
)

// Store persists document records.
type Store interface {
	Append(ctx context.Context, doc Document) error
	ListByHead(ctx context.Context, headID uuid.UUID) ([]Document, error)
}

// Recorder receives audit events. Satisfied by the audit service.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service appends document records; it never mutates the workflows that the
// documents supplement.
type Service struct {
	store   Store
	auditor Recorder
}

func NewService(store Store, auditor Recorder) *Service {
	return &Service{store: store, auditor: auditor}
}

// Attach records an uploaded document reference for the head, optionally
// bound to a member.
func (s *Service) Attach(ctx context.Context, headID uuid.UUID, memberID *uuid.UUID, label, fileRef string) (Document, error) {
	if fileRef == "" {
		return Document{}, dErrors.New(dErrors.CodeValidation, "a document file is required")
	}
	doc := Document{
		ID:         uuid.New(),
		HeadID:     headID,
		MemberID:   memberID,
		Label:      label,
		FileRef:    fileRef,
		UploadedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Append(ctx, doc); err != nil {
		return Document{}, dErrors.Wrap(dErrors.CodeInternal, "failed to store document", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionDocumentAttached,
		Entity:   "vault_document",
		EntityID: doc.ID,
		Outcome:  "attached",
	})
	return doc, nil
}

// ListByHead returns the head's uploaded documents, newest first.
func (s *Service) ListByHead(ctx context.Context, headID uuid.UUID) ([]Document, error) {
	docs, err := s.store.ListByHead(ctx, headID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list documents", err)
	}
	return docs, nil
}
