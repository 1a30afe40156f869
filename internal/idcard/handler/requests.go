package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"locality/internal/idcard"
	"locality/internal/idcard/service"
	dErrors "locality/pkg/domain-errors"
)

// submitRequest is the body for POST /id-requests. Resubmissions use the same
// body; the service decides whether a new record is created.
type submitRequest struct {
	MemberID         string `json:"member_id"`
	FullName         string `json:"full_name"`
	MotherName       string `json:"mother_name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	Occupation       string `json:"occupation"`
	Phone            string `json:"phone"`
	BirthPlace       string `json:"birth_place"`
	Address          string `json:"address"`
	HouseNumber      string `json:"house_number"`
	Nationality      string `json:"nationality"`
	EmergencyContact string `json:"emergency_contact"`
	CardType         string `json:"card_type"`
	PhotoRef         string `json:"photo_ref"`

	memberID uuid.UUID
}

func (r *submitRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.MemberID == "" {
		return dErrors.New(dErrors.CodeValidation, "member_id is required")
	}
	memberID, err := uuid.Parse(r.MemberID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "member_id must be a valid UUID")
	}
	r.memberID = memberID
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if r.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}
	return nil
}

func (r *submitRequest) params() service.SubmitParams {
	return service.SubmitParams{
		MemberID: r.memberID,
		Applicant: idcard.Applicant{
			FullName:         r.FullName,
			MotherName:       r.MotherName,
			Age:              r.Age,
			Gender:           r.Gender,
			Occupation:       r.Occupation,
			Phone:            r.Phone,
			BirthPlace:       r.BirthPlace,
			Address:          r.Address,
			HouseNumber:      r.HouseNumber,
			Nationality:      r.Nationality,
			EmergencyContact: r.EmergencyContact,
		},
		CardType: r.CardType,
		PhotoRef: r.PhotoRef,
	}
}

// statusRequest is the body for the admin status decision. ExpiresAt is
// optional and usually set when approving.
type statusRequest struct {
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at,omitempty"`

	parsedExpiry *time.Time
}

func (r *statusRequest) Validate() error {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if r.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "expires_at must be an RFC 3339 timestamp")
		}
		r.parsedExpiry = &t
	}
	return nil
}

func (r *statusRequest) expiresAt() *time.Time {
	return r.parsedExpiry
}
