// Package handler wires registration, login, and logout. Successful logins
// set the session cookie and also return the token for non-browser clients.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"locality/internal/auth"
	"locality/internal/auth/service"
	"locality/internal/platform/middleware"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

// Service defines the auth operations the handler needs.
type Service interface {
	RegisterAdmin(ctx context.Context, params service.RegisterAdminParams) (auth.Admin, error)
	LoginAdmin(ctx context.Context, email, password string) (service.Session, error)
	LoginHead(ctx context.Context, email, password string) (service.Session, error)
	Logout(ctx context.Context) error
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	secureCookie bool
}

func New(service Service, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{service: service, logger: logger, secureCookie: secureCookie}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/admin/register", h.HandleRegisterAdmin)
	r.Post("/auth/admin/login", h.HandleLoginAdmin)
	r.Post("/auth/login", h.HandleLoginHead)
}

// RegisterAuthenticated mounts the endpoints requiring a valid session.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

func (h *Handler) HandleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	admin, err := h.service.RegisterAdmin(ctx, service.RegisterAdminParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		PhotoRef: req.PhotoRef,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "admin registered",
		"request_id", requestcontext.RequestID(ctx), "admin_id", admin.ID)
	httputil.WriteJSON(w, http.StatusCreated, adminResponse{
		ID:       admin.ID.String(),
		FullName: admin.FullName,
		Email:    admin.Email,
		PhotoRef: admin.PhotoRef,
	})
}

func (h *Handler) HandleLoginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.LoginAdmin)
}

func (h *Handler) HandleLoginHead(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.LoginHead)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, attempt func(context.Context, string, string) (service.Session, error)) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	session, err := attempt(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:       session.Token,
		PrincipalID: session.PrincipalID.String(),
		Role:        string(session.Role),
		Email:       session.Email,
		ExpiresAt:   session.ExpiresAt,
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.clearSessionCookie(w)
	httputil.WriteMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PhotoRef string `json:"photo_ref"`
}

func (r *registerRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type adminResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	PhotoRef string `json:"photo_ref,omitempty"`
}

type sessionResponse struct {
	Token       string    `json:"token"`
	PrincipalID string    `json:"principal_id"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}
