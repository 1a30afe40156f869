package handler

import (
	"time"

	"github.com/google/uuid"

	"locality/internal/certificate"
)

// CertificateResponse is the wire form of a certificate request.
type CertificateResponse struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	MemberID uuid.UUID `json:"member_id"`
	HeadID   uuid.UUID `json:"head_id"`
	Status   string    `json:"status"`

	EventDate     string `json:"event_date"`
	EventPlace    string `json:"event_place"`
	PartyName     string `json:"party_name,omitempty"`
	PartyID       string `json:"party_id,omitempty"`
	SpouseName    string `json:"spouse_name,omitempty"`
	SpouseID      string `json:"spouse_id,omitempty"`
	RegistrarNote string `json:"registrar_note,omitempty"`
	DocumentRef   string `json:"document_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromCertificate(cert certificate.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:            cert.ID,
		Kind:          string(cert.Kind),
		MemberID:      cert.MemberID,
		HeadID:        cert.HeadID,
		Status:        string(cert.Status),
		EventDate:     cert.Details.EventDate.Format("2006-01-02"),
		EventPlace:    cert.Details.EventPlace,
		PartyName:     cert.Details.PartyName,
		PartyID:       cert.Details.PartyID,
		SpouseName:    cert.Details.SpouseName,
		SpouseID:      cert.Details.SpouseID,
		RegistrarNote: cert.Details.RegistrarNote,
		DocumentRef:   cert.DocumentRef,
		CreatedAt:     cert.CreatedAt,
		UpdatedAt:     cert.UpdatedAt,
	}
}

func fromCertificates(certs []certificate.Certificate) []CertificateResponse {
	out := make([]CertificateResponse, 0, len(certs))
	for _, cert := range certs {
		out = append(out, FromCertificate(cert))
	}
	return out
}

// DetailResponse joins a certificate with display fields from the directory.
type DetailResponse struct {
	CertificateResponse
	HeadFullName string `json:"head_full_name"`
	MemberName   string `json:"member_name"`
	MemberType   string `json:"member_type"`
}

func fromDetail(detail certificate.Detail) DetailResponse {
	return DetailResponse{
		CertificateResponse: FromCertificate(detail.Certificate),
		HeadFullName:        detail.HeadFullName,
		MemberName:          detail.MemberName,
		MemberType:          detail.MemberType,
	}
}
