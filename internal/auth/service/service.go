// Package service implements login, logout, and token validation for both
// principal roles.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"locality/internal/audit"
	"locality/internal/auth"
	"locality/internal/auth/secrets"
	"locality/internal/directory"
	"locality/internal/platform/metrics"
	"locality/internal/platform/middleware"
	"locality/internal/token"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/sentinel"
	"locality/pkg/requestcontext"
)

// AdminStore persists admin accounts.
type AdminStore interface {
	Save(ctx context.Context, admin auth.Admin) error
	FindByEmail(ctx context.Context, email string) (auth.Admin, error)
	FindByID(ctx context.Context, id uuid.UUID) (auth.Admin, error)
}

// HeadDirectory resolves family-head credentials. Satisfied by the directory
// service's head store lookups.
type HeadDirectory interface {
	FindHeadByEmail(ctx context.Context, email string) (directory.FamilyHead, error)
}

// RevocationList remembers revoked token IDs until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Recorder receives audit events. Satisfied by the audit service.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

type Service struct {
	admins  AdminStore
	heads   HeadDirectory
	tokens  *token.Service
	revoked RevocationList
	auditor Recorder
	metrics *metrics.Metrics
}

func New(admins AdminStore, heads HeadDirectory, tokens *token.Service, revoked RevocationList, auditor Recorder, m *metrics.Metrics) *Service {
	return &Service{
		admins:  admins,
		heads:   heads,
		tokens:  tokens,
		revoked: revoked,
		auditor: auditor,
		metrics: m,
	}
}

// Session is a successful login: the signed token plus what the transport
// needs to set the cookie.
type Session struct {
	Token       string
	PrincipalID uuid.UUID
	Role        requestcontext.Role
	Email       string
	ExpiresAt   time.Time
}

// RegisterAdminParams carries the self-service admin signup fields.
type RegisterAdminParams struct {
	FullName string
	Email    string
	Password string
	PhotoRef string
}

// RegisterAdmin creates an operator account. Email must be unique across admins.
func (s *Service) RegisterAdmin(ctx context.Context, params RegisterAdminParams) (auth.Admin, error) {
	params.Email = normalizeEmail(params.Email)
	if params.Email == "" || params.FullName == "" || params.Password == "" {
		return auth.Admin{}, dErrors.New(dErrors.CodeValidation, "full name, email, and password are required")
	}
	if _, err := s.admins.FindByEmail(ctx, params.Email); err == nil {
		return auth.Admin{}, dErrors.New(dErrors.CodeConflict, "an admin with this email already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return auth.Admin{}, dErrors.Wrap(dErrors.CodeInternal, "failed to check email", err)
	}

	hash, err := secrets.Hash(params.Password)
	if err != nil {
		return auth.Admin{}, err
	}
	admin := auth.Admin{
		ID:           uuid.New(),
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: hash,
		PhotoRef:     params.PhotoRef,
		CreatedAt:    requestcontext.Now(ctx).UTC(),
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return auth.Admin{}, dErrors.New(dErrors.CodeConflict, "an admin with this email already exists")
		}
		return auth.Admin{}, dErrors.Wrap(dErrors.CodeInternal, "failed to create admin", err)
	}

	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionAdminRegistered,
		Entity:   "admin",
		EntityID: admin.ID,
		Outcome:  "created",
	})
	return admin, nil
}

// LoginAdmin authenticates an operator.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return s.loginFailed(ctx, requestcontext.RoleAdmin, err)
	}
	if !secrets.Verify(admin.PasswordHash, password) {
		return s.loginFailed(ctx, requestcontext.RoleAdmin, nil)
	}
	return s.issue(ctx, admin.ID, requestcontext.RoleAdmin, admin.Email)
}

// LoginHead authenticates a family head. A soft-removed head cannot log in.
func (s *Service) LoginHead(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	head, err := s.heads.FindHeadByEmail(ctx, email)
	if err != nil {
		return s.loginFailed(ctx, requestcontext.RoleFamilyHead, err)
	}
	if head.IsRemoved || !secrets.Verify(head.PasswordHash, password) {
		return s.loginFailed(ctx, requestcontext.RoleFamilyHead, nil)
	}
	return s.issue(ctx, head.ID, requestcontext.RoleFamilyHead, head.Email)
}

func (s *Service) issue(ctx context.Context, principalID uuid.UUID, role requestcontext.Role, email string) (Session, error) {
	now := requestcontext.Now(ctx).UTC()
	signed, claims, err := s.tokens.Issue(principalID, role, email, now)
	if err != nil {
		return Session{}, dErrors.Wrap(dErrors.CodeInternal, "failed to issue token", err)
	}

	s.metrics.Logins.WithLabelValues(string(role), "success").Inc()
	s.auditor.Record(ctx, audit.Event{
		Actor:     principalID,
		ActorRole: string(role),
		Action:    audit.ActionLogin,
		Entity:    "principal",
		EntityID:  principalID,
		Outcome:   "success",
	})
	return Session{
		Token:       signed,
		PrincipalID: principalID,
		Role:        role,
		Email:       email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, role requestcontext.Role, cause error) (Session, error) {
	if cause != nil && !errors.Is(cause, sentinel.ErrNotFound) {
		return Session{}, dErrors.Wrap(dErrors.CodeInternal, "failed to look up account", cause)
	}
	s.metrics.Logins.WithLabelValues(string(role), "failure").Inc()
	s.auditor.Record(ctx, audit.Event{
		ActorRole: string(role),
		Action:    audit.ActionLoginFailed,
		Entity:    "principal",
		Outcome:   "failure",
	})
	// One message for unknown email, removed account, and wrong password.
	return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}

// Logout revokes the current token's jti for its remaining lifetime.
func (s *Service) Logout(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	if err := s.revoked.Revoke(ctx, jti, s.tokens.TTL()); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to revoke token", err)
	}
	s.auditor.Record(ctx, audit.Event{
		Action:   audit.ActionLogout,
		Entity:   "principal",
		EntityID: requestcontext.PrincipalID(ctx),
		Outcome:  "revoked",
	})
	return nil
}

// Validate implements middleware.TokenValidator: signature, expiry, then the
// revocation list.
func (s *Service) Validate(ctx context.Context, raw string) (*middleware.PrincipalClaims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	principalID, err := claims.PrincipalID()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check token revocation", err)
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return &middleware.PrincipalClaims{
		PrincipalID: principalID,
		Role:        requestcontext.Role(claims.Role),
		Email:       claims.Email,
		TokenID:     claims.ID,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
