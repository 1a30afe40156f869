package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"locality/pkg/requestcontext"
)

// AuthCookie is the httpOnly cookie carrying the signed token. A Bearer header
// is accepted as an alternative for non-browser clients.
const AuthCookie = "locality-token"

// PrincipalClaims is what the middleware needs back from token validation.
type PrincipalClaims struct {
	PrincipalID uuid.UUID
	Role        requestcontext.Role
	Email       string
	TokenID     string
}

// TokenValidator validates a signed token and rejects revoked ones.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*PrincipalClaims, error)
}

// RequireRole authenticates the request and enforces the given role. The
// principal's ID, role, email, and token ID land in the request context.
func RequireRole(validator TokenValidator, logger *slog.Logger, role requestcontext.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := tokenFromRequest(r)
			if raw == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := validator.Validate(ctx, raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if claims.Role != role {
				logger.WarnContext(ctx, "forbidden access - wrong role",
					"role", string(claims.Role),
					"required", string(role),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, claims.PrincipalID, claims.Role)
			ctx = requestcontext.WithEmail(ctx, claims.Email)
			ctx = requestcontext.WithTokenID(ctx, claims.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth authenticates the request without enforcing a role. Used for
// endpoints shared by both principal kinds, such as logout.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := tokenFromRequest(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			claims, err := validator.Validate(ctx, raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx = requestcontext.WithPrincipal(ctx, claims.PrincipalID, claims.Role)
			ctx = requestcontext.WithEmail(ctx, claims.Email)
			ctx = requestcontext.WithTokenID(ctx, claims.TokenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AuthCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"status":false,"message":"` + message + `"}`))
}
