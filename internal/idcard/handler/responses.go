package handler

import (
	"time"

	"github.com/google/uuid"

	"locality/internal/idcard"
)

// RequestResponse is the wire form of an identity-card request.
type RequestResponse struct {
	ID       uuid.UUID `json:"id"`
	MemberID uuid.UUID `json:"member_id"`
	HeadID   uuid.UUID `json:"head_id"`

	FullName         string `json:"full_name"`
	MotherName       string `json:"mother_name,omitempty"`
	Age              int    `json:"age"`
	Gender           string `json:"gender,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	Phone            string `json:"phone,omitempty"`
	BirthPlace       string `json:"birth_place,omitempty"`
	Address          string `json:"address,omitempty"`
	HouseNumber      string `json:"house_number,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`

	CardType  string     `json:"card_type,omitempty"`
	PhotoRef  string     `json:"photo_ref,omitempty"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Restored       bool       `json:"restored"`
	RestoredAt     *time.Time `json:"restored_at,omitempty"`
	RestorePayment string     `json:"restore_payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromRequest(req idcard.Request) RequestResponse {
	return RequestResponse{
		ID:               req.ID,
		MemberID:         req.MemberID,
		HeadID:           req.HeadID,
		FullName:         req.Applicant.FullName,
		MotherName:       req.Applicant.MotherName,
		Age:              req.Applicant.Age,
		Gender:           req.Applicant.Gender,
		Occupation:       req.Applicant.Occupation,
		Phone:            req.Applicant.Phone,
		BirthPlace:       req.Applicant.BirthPlace,
		Address:          req.Applicant.Address,
		HouseNumber:      req.Applicant.HouseNumber,
		Nationality:      req.Applicant.Nationality,
		EmergencyContact: req.Applicant.EmergencyContact,
		CardType:         req.CardType,
		PhotoRef:         req.PhotoRef,
		Status:           string(req.Status),
		ExpiresAt:        req.ExpiresAt,
		Restored:         req.Restored,
		RestoredAt:       req.RestoredAt,
		RestorePayment:   req.RestorePayment,
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
	}
}

func fromRequests(requests []idcard.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, FromRequest(req))
	}
	return out
}
