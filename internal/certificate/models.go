// Package certificate implements one request workflow shared by the four
// vital-event certificate kinds. The kinds differ only in their display name
// and in the death kind's post-approval side effect.
package certificate

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags which vital event a certificate records.
type Kind string

const (
	KindBirth    Kind = "birth"
	KindDeath    Kind = "death"
	KindMarriage Kind = "marriage"
	KindDivorce  Kind = "divorce"
)

// Kinds lists every certificate kind, in registration order.
var Kinds = []Kind{KindBirth, KindDeath, KindMarriage, KindDivorce}

func (k Kind) Valid() bool {
	switch k {
	case KindBirth, KindDeath, KindMarriage, KindDivorce:
		return true
	}
	return false
}

// Status is the review state of a certificate request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Active reports whether the request blocks a duplicate for the same
// (member, kind) pair.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Details carries the event-specific attributes. The spouse fields are only
// meaningful for marriage and divorce; the rest apply to all kinds.
type Details struct {
	EventDate     time.Time
	EventPlace    string
	PartyName     string
	PartyID       string
	SpouseName    string
	SpouseID      string
	RegistrarNote string
}

// Certificate is one request for a vital-event certificate.
type Certificate struct {
	ID          uuid.UUID
	Kind        Kind
	MemberID    uuid.UUID
	HeadID      uuid.UUID
	Status      Status
	DocumentRef string
	Details     Details
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Detail is a certificate joined with display fields from the directory.
type Detail struct {
	Certificate
	HeadFullName string
	MemberName   string
	MemberType   string
}
