// Package service implements the membership workflow: family-head accounts,
// member submission, and the approval/removal lifecycle.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"locality/internal/audit"
	"locality/internal/auth/secrets"
	"locality/internal/directory"
	"locality/internal/platform/metrics"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/sentinel"
	"locality/pkg/requestcontext"
)

// HeadStore persists family heads.
type HeadStore interface {
	SaveHead(ctx context.Context, head directory.FamilyHead) error
	UpdateHead(ctx context.Context, head directory.FamilyHead) error
	FindHeadByID(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error)
	FindHeadByEmail(ctx context.Context, email string) (directory.FamilyHead, error)
	ListHeads(ctx context.Context, includeRemoved bool) ([]directory.FamilyHead, error)
}

// MemberStore persists members.
type MemberStore interface {
	SaveMember(ctx context.Context, member directory.Member) error
	UpdateMember(ctx context.Context, member directory.Member) error
	FindMemberByID(ctx context.Context, id uuid.UUID) (directory.Member, error)
	ListMembersByHead(ctx context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error)
	ListMembersByApproval(ctx context.Context, approval directory.ApprovalStatus) ([]directory.Member, error)
}

// Recorder receives audit events. Satisfied by the audit service.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service keeps orchestration out of handlers and leaves row shapes to stores.
type Service struct {
	heads   HeadStore
	members MemberStore
	auditor Recorder
	metrics *metrics.Metrics
}

func New(heads HeadStore, members MemberStore, auditor Recorder, m *metrics.Metrics) *Service {
	return &Service{heads: heads, members: members, auditor: auditor, metrics: m}
}

// ---------------------------------------------------------------------------
// Family heads
// ---------------------------------------------------------------------------

// AddHeadParams carries the admin-supplied attributes for a new head.
type AddHeadParams struct {
	Email       string
	Password    string
	FullName    string
	Phone       string
	HouseNumber string
	FamilySize  int
	PhotoRef    string
}

// AddHead creates a family-head account. Email must be unique across heads.
func (s *Service) AddHead(ctx context.Context, params AddHeadParams) (directory.FamilyHead, error) {
	params.Email = normalizeEmail(params.Email)
	if params.Email == "" || params.FullName == "" {
		return directory.FamilyHead{}, dErrors.New(dErrors.CodeValidation, "email and full name are required")
	}
	if err := s.ensureEmailFree(ctx, params.Email, uuid.Nil); err != nil {
		return directory.FamilyHead{}, err
	}

	password := params.Password
	if password == "" {
		generated, err := secrets.Generate()
		if err != nil {
			return directory.FamilyHead{}, dErrors.Wrap(dErrors.CodeInternal, "failed to create account", err)
		}
		password = generated
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return directory.FamilyHead{}, err
	}

	now := requestcontext.Now(ctx).UTC()
	head := directory.FamilyHead{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: hash,
		FullName:     params.FullName,
		Phone:        params.Phone,
		HouseNumber:  params.HouseNumber,
		FamilySize:   params.FamilySize,
		PhotoRef:     params.PhotoRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.heads.SaveHead(ctx, head); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return directory.FamilyHead{}, dErrors.New(dErrors.CodeConflict, "a family head with this email already exists")
		}
		return directory.FamilyHead{}, dErrors.Wrap(dErrors.CodeInternal, "failed to create family head", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionHeadAdded,
		Entity:   "family_head",
		EntityID: head.ID,
		Outcome:  "created",
	})
	return head, nil
}

// EditHeadParams carries the mutable head attributes. Email uniqueness is
// re-checked excluding the head's own record.
type EditHeadParams struct {
	Email       string
	FullName    string
	Phone       string
	HouseNumber string
	FamilySize  int
	PhotoRef    string
}

// EditHead updates a head's profile. Used by admins for any head and by a
// head for its own record (the handler passes the principal's own ID).
func (s *Service) EditHead(ctx context.Context, id uuid.UUID, params EditHeadParams) (directory.FamilyHead, error) {
	params.Email = normalizeEmail(params.Email)
	if params.Email == "" || params.FullName == "" {
		return directory.FamilyHead{}, dErrors.New(dErrors.CodeValidation, "email and full name are required")
	}

	head, err := s.heads.FindHeadByID(ctx, id)
	if err != nil {
		return directory.FamilyHead{}, translateStoreErr(err, "family head not found")
	}
	if err := s.ensureEmailFree(ctx, params.Email, id); err != nil {
		return directory.FamilyHead{}, err
	}

	head.Email = params.Email
	head.FullName = params.FullName
	head.Phone = params.Phone
	head.HouseNumber = params.HouseNumber
	head.FamilySize = params.FamilySize
	if params.PhotoRef != "" {
		head.PhotoRef = params.PhotoRef
	}
	head.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.heads.UpdateHead(ctx, head); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return directory.FamilyHead{}, dErrors.New(dErrors.CodeConflict, "a family head with this email already exists")
		}
		return directory.FamilyHead{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update family head", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionHeadEdited,
		Entity:   "family_head",
		EntityID: head.ID,
		Outcome:  "updated",
	})
	return head, nil
}

// RemoveHead soft-deletes a head. Members and pending requests are untouched;
// a removed head simply cannot log in or appear in default listings.
func (s *Service) RemoveHead(ctx context.Context, id uuid.UUID) error {
	return s.setHeadRemoved(ctx, id, true, audit.ActionHeadRemoved)
}

// RestoreHead reverses a soft delete.
func (s *Service) RestoreHead(ctx context.Context, id uuid.UUID) error {
	return s.setHeadRemoved(ctx, id, false, audit.ActionHeadRestored)
}

func (s *Service) setHeadRemoved(ctx context.Context, id uuid.UUID, removed bool, action audit.Action) error {
	head, err := s.heads.FindHeadByID(ctx, id)
	if err != nil {
		return translateStoreErr(err, "family head not found")
	}
	head.IsRemoved = removed
	head.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.heads.UpdateHead(ctx, head); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update family head", err)
	}
	s.auditor.Record(ctx, audit.Event{
		Action:   action,
		Entity:   "family_head",
		EntityID: id,
		Outcome:  outcomeForRemoval(removed),
	})
	return nil
}

// GetHead fetches one head.
func (s *Service) GetHead(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error) {
	head, err := s.heads.FindHeadByID(ctx, id)
	if err != nil {
		return directory.FamilyHead{}, translateStoreErr(err, "family head not found")
	}
	return head, nil
}

// ListHeads lists heads, optionally including soft-removed ones.
func (s *Service) ListHeads(ctx context.Context, includeRemoved bool) ([]directory.FamilyHead, error) {
	heads, err := s.heads.ListHeads(ctx, includeRemoved)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list family heads", err)
	}
	return heads, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, ownID uuid.UUID) error {
	existing, err := s.heads.FindHeadByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to check email", err)
	}
	if existing.ID == ownID {
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "a family head with this email already exists")
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// SubmitMemberParams carries the head-supplied attributes for a new member.
// File references are produced by the vault saver before submission.
type SubmitMemberParams struct {
	FullName     string
	BirthDate    string // RFC 3339 date, e.g. 2004-11-02
	Type         directory.MemberType
	Relationship string
	Education    string
	Occupation   string
	Status       directory.MemberStatus
	Tenure       directory.Tenure
	Role         directory.HouseholdRole

	BirthCertRef       string
	MarriageCertRef    string
	PhotoRef           string
	RentalAgreementRef string
}

// SubmitMember records a member under the given head, pending admin review.
func (s *Service) SubmitMember(ctx context.Context, headID uuid.UUID, params SubmitMemberParams) (directory.Member, error) {
	if params.FullName == "" || params.BirthDate == "" || params.Relationship == "" {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "full name, birth date, and relationship are required")
	}
	birthDate, err := parseDate(params.BirthDate)
	if err != nil {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "birth date must be a valid YYYY-MM-DD date")
	}
	if params.Type == "" {
		params.Type = directory.MemberPermanent
	}
	if !params.Type.Valid() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "invalid member type")
	}
	if params.Tenure == "" {
		params.Tenure = directory.TenureMember
	}
	if !params.Tenure.Valid() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "invalid tenure")
	}
	if params.Tenure == directory.TenureRental && params.RentalAgreementRef == "" {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "rental agreement required")
	}
	if params.Status == "" {
		params.Status = directory.StatusActive
	}
	if !params.Status.Valid() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "invalid member status")
	}
	if !params.Role.Valid() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "invalid household role")
	}

	if _, err := s.heads.FindHeadByID(ctx, headID); err != nil {
		return directory.Member{}, translateStoreErr(err, "family head not found")
	}

	now := requestcontext.Now(ctx).UTC()
	member := directory.Member{
		ID:                 uuid.New(),
		HeadID:             headID,
		FullName:           params.FullName,
		BirthDate:          birthDate,
		Type:               params.Type,
		Relationship:       params.Relationship,
		Education:          params.Education,
		Occupation:         params.Occupation,
		Status:             params.Status,
		Tenure:             params.Tenure,
		Role:               params.Role,
		Approval:           directory.ApprovalPending,
		BirthCertRef:       params.BirthCertRef,
		MarriageCertRef:    params.MarriageCertRef,
		PhotoRef:           params.PhotoRef,
		RentalAgreementRef: params.RentalAgreementRef,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.members.SaveMember(ctx, member); err != nil {
		return directory.Member{}, dErrors.Wrap(dErrors.CodeInternal, "failed to save member", err)
	}

	s.metrics.MembersSubmitted.Inc()
	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionMemberSubmitted,
		Entity:   "member",
		EntityID: member.ID,
		Outcome:  string(directory.ApprovalPending),
	})
	return member, nil
}

// SetMemberApproval applies an admin decision. The decision touches nothing
// but the approval field.
func (s *Service) SetMemberApproval(ctx context.Context, memberID uuid.UUID, decision directory.ApprovalStatus) (directory.Member, error) {
	if !decision.Decision() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "decision must be APPROVED or REJECTED")
	}
	member, err := s.members.FindMemberByID(ctx, memberID)
	if err != nil {
		return directory.Member{}, translateStoreErr(err, "member not found")
	}
	member.Approval = decision
	member.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.members.UpdateMember(ctx, member); err != nil {
		return directory.Member{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update member", err)
	}

	s.metrics.WorkflowDecisions.WithLabelValues("membership", string(decision)).Inc()
	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionMemberDecision,
		Entity:   "member",
		EntityID: memberID,
		Outcome:  string(decision),
	})
	return member, nil
}

// EditMemberParams carries the mutable demographic fields. HeadID is not
// here on purpose: a member never moves between households.
type EditMemberParams struct {
	FullName     string
	BirthDate    string
	Type         directory.MemberType
	Relationship string
	Education    string
	Occupation   string
	Status       directory.MemberStatus
	Tenure       directory.Tenure
	Role         directory.HouseholdRole
	PhotoRef     string
}

// EditMember updates a member's demographic and status fields. When ownerID
// is non-nil the member must belong to that head; a foreign member reads as
// not found so head A cannot probe head B's households.
func (s *Service) EditMember(ctx context.Context, memberID, ownerID uuid.UUID, params EditMemberParams) (directory.Member, error) {
	if params.FullName == "" || params.BirthDate == "" || params.Relationship == "" {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "full name, birth date, and relationship are required")
	}
	birthDate, err := parseDate(params.BirthDate)
	if err != nil {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "birth date must be a valid YYYY-MM-DD date")
	}
	if !params.Type.Valid() || !params.Tenure.Valid() || !params.Status.Valid() || !params.Role.Valid() {
		return directory.Member{}, dErrors.New(dErrors.CodeValidation, "invalid member attributes")
	}

	member, err := s.findScoped(ctx, memberID, ownerID)
	if err != nil {
		return directory.Member{}, err
	}

	member.FullName = params.FullName
	member.BirthDate = birthDate
	member.Type = params.Type
	member.Relationship = params.Relationship
	member.Education = params.Education
	member.Occupation = params.Occupation
	member.Status = params.Status
	member.Tenure = params.Tenure
	member.Role = params.Role
	if params.PhotoRef != "" {
		member.PhotoRef = params.PhotoRef
	}
	member.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.members.UpdateMember(ctx, member); err != nil {
		return directory.Member{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update member", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionMemberEdited,
		Entity:   "member",
		EntityID: memberID,
		Outcome:  "updated",
	})
	return member, nil
}

// RemoveMember soft-deletes a member without touching its approval state.
func (s *Service) RemoveMember(ctx context.Context, memberID, ownerID uuid.UUID) error {
	return s.setMemberRemoved(ctx, memberID, ownerID, true, audit.ActionMemberRemoved)
}

// RestoreMember reverses a soft delete; approval state is untouched.
func (s *Service) RestoreMember(ctx context.Context, memberID, ownerID uuid.UUID) error {
	return s.setMemberRemoved(ctx, memberID, ownerID, false, audit.ActionMemberRestored)
}

func (s *Service) setMemberRemoved(ctx context.Context, memberID, ownerID uuid.UUID, removed bool, action audit.Action) error {
	member, err := s.findScoped(ctx, memberID, ownerID)
	if err != nil {
		return err
	}
	member.IsRemoved = removed
	member.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.members.UpdateMember(ctx, member); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update member", err)
	}
	s.auditor.Record(ctx, audit.Event{
		Action:   action,
		Entity:   "member",
		EntityID: memberID,
		Outcome:  outcomeForRemoval(removed),
	})
	return nil
}

// GetMember fetches one member, scoped to ownerID when non-nil.
func (s *Service) GetMember(ctx context.Context, memberID, ownerID uuid.UUID) (directory.Member, error) {
	return s.findScoped(ctx, memberID, ownerID)
}

// ListMembers lists a head's members.
func (s *Service) ListMembers(ctx context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error) {
	members, err := s.members.ListMembersByHead(ctx, headID, includeRemoved)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list members", err)
	}
	return members, nil
}

// ListMembersByApproval lists members in a given review state across all
// households; the admin review queue.
func (s *Service) ListMembersByApproval(ctx context.Context, approval directory.ApprovalStatus) ([]directory.Member, error) {
	members, err := s.members.ListMembersByApproval(ctx, approval)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list members", err)
	}
	return members, nil
}

// MemberForHead verifies ownership and returns the member. Downstream
// workflows (ID requests, certificates) call this before creating records.
func (s *Service) MemberForHead(ctx context.Context, memberID, headID uuid.UUID) (directory.Member, error) {
	return s.findScoped(ctx, memberID, headID)
}

// MarkDeceased forces a member's status to DECEASED. Death-certificate
// approval is the only caller.
func (s *Service) MarkDeceased(ctx context.Context, memberID uuid.UUID) error {
	member, err := s.members.FindMemberByID(ctx, memberID)
	if err != nil {
		return translateStoreErr(err, "member not found")
	}
	member.Status = directory.StatusDeceased
	member.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.members.UpdateMember(ctx, member); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update member", err)
	}
	return nil
}

func (s *Service) findScoped(ctx context.Context, memberID, ownerID uuid.UUID) (directory.Member, error) {
	member, err := s.members.FindMemberByID(ctx, memberID)
	if err != nil {
		return directory.Member{}, translateStoreErr(err, "member not found")
	}
	if ownerID != uuid.Nil && member.HeadID != ownerID {
		return directory.Member{}, dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return member, nil
}

func translateStoreErr(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
}

func outcomeForRemoval(removed bool) string {
	if removed {
		return "removed"
	}
	return "restored"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
