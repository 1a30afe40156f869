package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"locality/internal/audit"
	adminstore "locality/internal/auth/store/admin"
	"locality/internal/auth/store/revocation"
	dirservice "locality/internal/directory/service"
	dirstore "locality/internal/directory/store"
	"locality/internal/platform/metrics"
	"locality/internal/token"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/requestcontext"
)

type recorderStub struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorderStub) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorderStub) lastAction() audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Action
}

type AuthServiceSuite struct {
	suite.Suite
	admins    *adminstore.InMemoryStore
	directory *dirstore.InMemoryStore
	heads     *dirservice.Service
	revoked   *revocation.MemoryList
	recorder  *recorderStub
	service   *Service
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.admins = adminstore.NewMemory()
	s.directory = dirstore.NewMemory()
	s.revoked = revocation.NewMemory()
	s.recorder = &recorderStub{}

	m := metrics.NewForTest()
	s.heads = dirservice.New(s.directory, s.directory, s.recorder, m)
	tokens := token.NewService("test-signing-key", "locality", time.Hour)
	s.service = New(s.admins, s.directory, tokens, s.revoked, s.recorder, m)
}

func (s *AuthServiceSuite) registerAdmin(email string) {
	_, err := s.service.RegisterAdmin(context.Background(), RegisterAdminParams{
		FullName: "Site Operator",
		Email:    email,
		Password: "operator-secret",
	})
	s.Require().NoError(err)
}

func (s *AuthServiceSuite) addHead(email string) uuid.UUID {
	head, err := s.heads.AddHead(context.Background(), dirservice.AddHeadParams{
		Email:    email,
		Password: "household-secret",
		FullName: "Ravi Kumar",
	})
	s.Require().NoError(err)
	return head.ID
}

func (s *AuthServiceSuite) TestRegisterAdmin() {
	ctx := context.Background()

	s.Run("creates an operator account", func() {
		admin, err := s.service.RegisterAdmin(ctx, RegisterAdminParams{
			FullName: "Site Operator",
			Email:    "Ops@Example.com",
			Password: "operator-secret",
		})
		s.Require().NoError(err)
		s.Equal("ops@example.com", admin.Email)
		s.NotEmpty(admin.PasswordHash)
		s.NotEqual("operator-secret", admin.PasswordHash)
		s.Equal(audit.ActionAdminRegistered, s.recorder.lastAction())
	})

	s.Run("missing fields are rejected", func() {
		_, err := s.service.RegisterAdmin(ctx, RegisterAdminParams{Email: "no-name@example.com"})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "full name, email, and password are required")
	})

	s.Run("duplicate email conflicts", func() {
		s.registerAdmin("dupe@example.com")
		_, err := s.service.RegisterAdmin(ctx, RegisterAdminParams{
			FullName: "Second Operator",
			Email:    "DUPE@example.com",
			Password: "another-secret",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "an admin with this email already exists")
	})
}

func (s *AuthServiceSuite) TestLoginAdmin() {
	ctx := context.Background()
	s.registerAdmin("admin@example.com")

	s.Run("valid credentials yield a session", func() {
		session, err := s.service.LoginAdmin(ctx, "Admin@Example.com", "operator-secret")
		s.Require().NoError(err)
		s.NotEmpty(session.Token)
		s.Equal(requestcontext.RoleAdmin, session.Role)
		s.Equal("admin@example.com", session.Email)
		s.True(session.ExpiresAt.After(time.Now()))
	})

	s.Run("unknown email fails with the shared message", func() {
		_, err := s.service.LoginAdmin(ctx, "nobody@example.com", "operator-secret")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "invalid email or password")
	})

	s.Run("wrong password fails with the shared message", func() {
		_, err := s.service.LoginAdmin(ctx, "admin@example.com", "wrong")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "invalid email or password")
	})
}

func (s *AuthServiceSuite) TestLoginHead() {
	ctx := context.Background()
	headID := s.addHead("head@example.com")

	s.Run("valid credentials yield a session", func() {
		session, err := s.service.LoginHead(ctx, "head@example.com", "household-secret")
		s.Require().NoError(err)
		s.Equal(headID, session.PrincipalID)
		s.Equal(requestcontext.RoleFamilyHead, session.Role)
	})

	s.Run("removed head cannot log in", func() {
		s.Require().NoError(s.heads.RemoveHead(ctx, headID))

		_, err := s.service.LoginHead(ctx, "head@example.com", "household-secret")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		// The removed-account failure is indistinguishable from a bad password.
		s.Contains(err.Error(), "invalid email or password")
	})

	s.Run("restored head can log in again", func() {
		s.Require().NoError(s.heads.RestoreHead(ctx, headID))
		_, err := s.service.LoginHead(ctx, "head@example.com", "household-secret")
		s.NoError(err)
	})
}

func (s *AuthServiceSuite) TestLogoutAndValidate() {
	ctx := context.Background()
	s.registerAdmin("session@example.com")

	s.Run("logout without a session is unauthorized", func() {
		err := s.service.Logout(ctx)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "no active session")
	})

	s.Run("validate accepts a live token and rejects it after logout", func() {
		session, err := s.service.LoginAdmin(ctx, "session@example.com", "operator-secret")
		s.Require().NoError(err)

		claims, err := s.service.Validate(ctx, session.Token)
		s.Require().NoError(err)
		s.Equal(session.PrincipalID, claims.PrincipalID)
		s.Equal(requestcontext.RoleAdmin, claims.Role)

		logoutCtx := requestcontext.WithTokenID(
			requestcontext.WithPrincipal(ctx, claims.PrincipalID, claims.Role),
			claims.TokenID,
		)
		s.Require().NoError(s.service.Logout(logoutCtx))
		s.Equal(audit.ActionLogout, s.recorder.lastAction())

		_, err = s.service.Validate(ctx, session.Token)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "token has been revoked")
	})

	s.Run("validate rejects garbage", func() {
		_, err := s.service.Validate(ctx, "not-a-token")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
