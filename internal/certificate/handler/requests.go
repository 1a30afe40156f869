package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"locality/internal/certificate"
	"locality/internal/certificate/service"
	dErrors "locality/pkg/domain-errors"
)

// certificateRequest is the body for requesting any certificate kind. The
// spouse fields only matter for marriage and divorce; the service ignores
// them elsewhere.
type certificateRequest struct {
	MemberID      string `json:"member_id"`
	EventDate     string `json:"event_date"`
	EventPlace    string `json:"event_place"`
	PartyName     string `json:"party_name"`
	PartyID       string `json:"party_id"`
	SpouseName    string `json:"spouse_name"`
	SpouseID      string `json:"spouse_id"`
	RegistrarNote string `json:"registrar_note"`
	DocumentRef   string `json:"document_ref"`

	memberID  uuid.UUID
	eventDate time.Time
}

func (r *certificateRequest) Validate() error {
	r.EventPlace = strings.TrimSpace(r.EventPlace)
	if r.MemberID == "" {
		return dErrors.New(dErrors.CodeValidation, "member_id is required")
	}
	memberID, err := uuid.Parse(r.MemberID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "member_id must be a valid UUID")
	}
	r.memberID = memberID
	if r.EventDate == "" {
		return dErrors.New(dErrors.CodeValidation, "event_date is required")
	}
	eventDate, err := time.Parse("2006-01-02", r.EventDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "event_date must be a valid YYYY-MM-DD date")
	}
	r.eventDate = eventDate
	if r.EventPlace == "" {
		return dErrors.New(dErrors.CodeValidation, "event_place is required")
	}
	return nil
}

func (r *certificateRequest) params() service.RequestParams {
	return service.RequestParams{
		MemberID: r.memberID,
		Details: certificate.Details{
			EventDate:     r.eventDate,
			EventPlace:    r.EventPlace,
			PartyName:     r.PartyName,
			PartyID:       r.PartyID,
			SpouseName:    r.SpouseName,
			SpouseID:      r.SpouseID,
			RegistrarNote: r.RegistrarNote,
		},
		DocumentRef: r.DocumentRef,
	}
}

// statusRequest is the body for an admin certificate decision.
type statusRequest struct {
	Status string `json:"status"`
}

func (r *statusRequest) Validate() error {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}
