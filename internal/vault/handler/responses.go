package handler

import (
	"time"

	"github.com/google/uuid"

	"locality/internal/vault"
)

// DocumentResponse is the wire form of a vault document.
type DocumentResponse struct {
	ID         uuid.UUID  `json:"id"`
	HeadID     uuid.UUID  `json:"head_id"`
	MemberID   *uuid.UUID `json:"member_id,omitempty"`
	Label      string     `json:"label"`
	FileRef    string     `json:"file_ref"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

func fromDocument(doc vault.Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		HeadID:     doc.HeadID,
		MemberID:   doc.MemberID,
		Label:      doc.Label,
		FileRef:    doc.FileRef,
		UploadedAt: doc.UploadedAt,
	}
}

func fromDocuments(docs []vault.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out
}
