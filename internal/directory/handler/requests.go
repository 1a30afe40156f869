package handler

import (
	"strings"

	"locality/internal/directory"
	"locality/internal/directory/service"
	dErrors "locality/pkg/domain-errors"
)

// headRequest is the body for creating or editing a family head. Password is
// only honoured on creation.
type headRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	HouseNumber string `json:"house_number"`
	FamilySize  int    `json:"family_size"`
	PhotoRef    string `json:"photo_ref"`
}

func (r *headRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if r.FamilySize < 0 {
		return dErrors.New(dErrors.CodeValidation, "family_size must not be negative")
	}
	return nil
}

// memberRequest is the body for submitting or editing a household member.
type memberRequest struct {
	FullName     string `json:"full_name"`
	BirthDate    string `json:"birth_date"`
	Type         string `json:"type"`
	Relationship string `json:"relationship"`
	Education    string `json:"education"`
	Occupation   string `json:"occupation"`
	Status       string `json:"status"`
	Tenure       string `json:"tenure"`
	Role         string `json:"role"`

	BirthCertRef       string `json:"birth_cert_ref"`
	MarriageCertRef    string `json:"marriage_cert_ref"`
	PhotoRef           string `json:"photo_ref"`
	RentalAgreementRef string `json:"rental_agreement_ref"`
}

func (r *memberRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Relationship = strings.TrimSpace(r.Relationship)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if r.BirthDate == "" {
		return dErrors.New(dErrors.CodeValidation, "birth_date is required")
	}
	if r.Relationship == "" {
		return dErrors.New(dErrors.CodeValidation, "relationship is required")
	}
	return nil
}

func (r *memberRequest) submitParams() service.SubmitMemberParams {
	return service.SubmitMemberParams{
		FullName:           r.FullName,
		BirthDate:          r.BirthDate,
		Type:               directory.MemberType(r.Type),
		Relationship:       r.Relationship,
		Education:          r.Education,
		Occupation:         r.Occupation,
		Status:             directory.MemberStatus(r.Status),
		Tenure:             directory.Tenure(r.Tenure),
		Role:               directory.HouseholdRole(r.Role),
		BirthCertRef:       r.BirthCertRef,
		MarriageCertRef:    r.MarriageCertRef,
		PhotoRef:           r.PhotoRef,
		RentalAgreementRef: r.RentalAgreementRef,
	}
}

func (r *memberRequest) editParams() service.EditMemberParams {
	return service.EditMemberParams{
		FullName:     r.FullName,
		BirthDate:    r.BirthDate,
		Type:         directory.MemberType(r.Type),
		Relationship: r.Relationship,
		Education:    r.Education,
		Occupation:   r.Occupation,
		Status:       directory.MemberStatus(r.Status),
		Tenure:       directory.Tenure(r.Tenure),
		Role:         directory.HouseholdRole(r.Role),
		PhotoRef:     r.PhotoRef,
	}
}

// approvalRequest is the body for an admin approval decision.
type approvalRequest struct {
	Decision string `json:"decision"`
}

func (r *approvalRequest) Validate() error {
	r.Decision = strings.ToUpper(strings.TrimSpace(r.Decision))
	if r.Decision == "" {
		return dErrors.New(dErrors.CodeValidation, "decision is required")
	}
	return nil
}
