package handler

import (
	"time"

	"github.com/google/uuid"

	"locality/internal/directory"
)

// HeadResponse is the wire form of a family head. The password hash never
// leaves the service.
type HeadResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	HouseNumber string    `json:"house_number"`
	FamilySize  int       `json:"family_size"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	IsRemoved   bool      `json:"is_removed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromHead(head directory.FamilyHead) HeadResponse {
	return HeadResponse{
		ID:          head.ID,
		Email:       head.Email,
		FullName:    head.FullName,
		Phone:       head.Phone,
		HouseNumber: head.HouseNumber,
		FamilySize:  head.FamilySize,
		PhotoRef:    head.PhotoRef,
		IsRemoved:   head.IsRemoved,
		CreatedAt:   head.CreatedAt,
		UpdatedAt:   head.UpdatedAt,
	}
}

func fromHeads(heads []directory.FamilyHead) []HeadResponse {
	out := make([]HeadResponse, 0, len(heads))
	for _, head := range heads {
		out = append(out, FromHead(head))
	}
	return out
}

// MemberResponse is the wire form of a household member.
type MemberResponse struct {
	ID           uuid.UUID `json:"id"`
	HeadID       uuid.UUID `json:"head_id"`
	FullName     string    `json:"full_name"`
	BirthDate    string    `json:"birth_date"`
	Type         string    `json:"type"`
	Relationship string    `json:"relationship"`
	Education    string    `json:"education,omitempty"`
	Occupation   string    `json:"occupation,omitempty"`
	Status       string    `json:"status"`
	Tenure       string    `json:"tenure"`
	Role         string    `json:"role,omitempty"`
	Approval     string    `json:"approval"`
	IsRemoved    bool      `json:"is_removed"`

	BirthCertRef       string `json:"birth_cert_ref,omitempty"`
	DeathCertRef       string `json:"death_cert_ref,omitempty"`
	MarriageCertRef    string `json:"marriage_cert_ref,omitempty"`
	PhotoRef           string `json:"photo_ref,omitempty"`
	RentalAgreementRef string `json:"rental_agreement_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromMember(m directory.Member) MemberResponse {
	return MemberResponse{
		ID:                 m.ID,
		HeadID:             m.HeadID,
		FullName:           m.FullName,
		BirthDate:          m.BirthDate.Format("2006-01-02"),
		Type:               string(m.Type),
		Relationship:       m.Relationship,
		Education:          m.Education,
		Occupation:         m.Occupation,
		Status:             string(m.Status),
		Tenure:             string(m.Tenure),
		Role:               string(m.Role),
		Approval:           string(m.Approval),
		IsRemoved:          m.IsRemoved,
		BirthCertRef:       m.BirthCertRef,
		DeathCertRef:       m.DeathCertRef,
		MarriageCertRef:    m.MarriageCertRef,
		PhotoRef:           m.PhotoRef,
		RentalAgreementRef: m.RentalAgreementRef,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func fromMembers(members []directory.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, FromMember(m))
	}
	return out
}
