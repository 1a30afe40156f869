// Package directory holds the identity records everything else references:
// family heads and the members of their households.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus tracks the admin review state of a submitted member.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Decision reports whether the status is a valid admin decision (a member can
// be approved or rejected, never reset to pending through the decision path).
func (s ApprovalStatus) Decision() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// MemberType distinguishes established residents from newborns.
type MemberType string

const (
	MemberPermanent MemberType = "PERMANENT"
	MemberNewborn   MemberType = "NEWBORN"
)

func (t MemberType) Valid() bool {
	return t == MemberPermanent || t == MemberNewborn
}

// MemberStatus is the member's life/residency status.
type MemberStatus string

const (
	StatusActive       MemberStatus = "ACTIVE"
	StatusMarried      MemberStatus = "MARRIED"
	StatusDeceased     MemberStatus = "DECEASED"
	StatusLeftLocality MemberStatus = "LEFT_LOCALITY"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMarried, StatusDeceased, StatusLeftLocality:
		return true
	}
	return false
}

// Tenure distinguishes household members from rental occupants. Rental
// occupants must attach a rental agreement on submission.
type Tenure string

const (
	TenureMember Tenure = "MEMBER"
	TenureRental Tenure = "RENTAL"
)

func (t Tenure) Valid() bool {
	return t == TenureMember || t == TenureRental
}

// HouseholdRole optionally tags the member's position in the household.
type HouseholdRole string

const (
	RoleHeader HouseholdRole = "HEADER"
	RoleWife   HouseholdRole = "WIFE"
	RoleChild  HouseholdRole = "CHILD"
)

func (r HouseholdRole) Valid() bool {
	switch r {
	case RoleHeader, RoleWife, RoleChild, "":
		return true
	}
	return false
}

// FamilyHead is the householder account that owns members and submits
// requests on their behalf.
type FamilyHead struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	HouseNumber  string
	FamilySize   int
	PhotoRef     string
	IsRemoved    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member is a person recorded under exactly one family head. HeadID never
// changes after creation.
type Member struct {
	ID           uuid.UUID
	HeadID       uuid.UUID
	FullName     string
	BirthDate    time.Time
	Type         MemberType
	Relationship string
	Education    string
	Occupation   string
	Status       MemberStatus
	Tenure       Tenure
	Role         HouseholdRole
	Approval     ApprovalStatus
	IsRemoved    bool

	// Stored file references, opaque to the workflow.
	BirthCertRef       string
	DeathCertRef       string
	MarriageCertRef    string
	PhotoRef           string
	RentalAgreementRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}
