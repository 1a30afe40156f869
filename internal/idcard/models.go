// Package idcard implements the identity-card request workflow. Each member
// has at most one current request; rejection and expiry reuse the same record
// on resubmission instead of accumulating history.
package idcard

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review state of an identity-card request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Active reports whether the request blocks a new submission outright.
// EXPIRED is handled separately because it depends on the expiry date.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Applicant carries the personal fields printed on the card.
type Applicant struct {
	FullName         string
	MotherName       string
	Age              int
	Gender           string
	Occupation       string
	Phone            string
	BirthPlace       string
	Address          string
	HouseNumber      string
	Nationality      string
	EmergencyContact string
}

// Request is one member's current identity-card request. ID and CreatedAt
// survive resubmission; everything else is replaced.
type Request struct {
	ID        uuid.UUID
	MemberID  uuid.UUID
	HeadID    uuid.UUID
	Applicant Applicant
	CardType  string
	PhotoRef  string
	Status    Status
	ExpiresAt *time.Time

	// Restoration metadata for lost-card reissues; cleared on resubmission.
	Restored       bool
	RestoredAt     *time.Time
	RestorePayment string

	CreatedAt time.Time
	UpdatedAt time.Time
}
