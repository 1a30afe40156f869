// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
// Tests inject them directly:
//
//	ctx = requestcontext.WithPrincipal(ctx, headID, requestcontext.RoleFamilyHead)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two principal kinds. There is no hierarchy: an Admin
// is not a FamilyHead and vice versa.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFamilyHead Role = "family_head"
)

type (
	principalIDKey struct{}
	roleKey        struct{}
	emailKey       struct{}
	tokenIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyPrincipalID = principalIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyEmail       = emailKey{}
	ContextKeyTokenID     = tokenIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
)

// PrincipalID retrieves the authenticated principal's ID from the context.
// Returns uuid.Nil if not set.
func PrincipalID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ContextKeyPrincipalID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// PrincipalRole retrieves the authenticated principal's role from the context.
func PrincipalRole(ctx context.Context) Role {
	if role, ok := ctx.Value(ContextKeyRole).(Role); ok {
		return role
	}
	return ""
}

// PrincipalEmail retrieves the authenticated principal's email from the context.
func PrincipalEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ContextKeyEmail).(string); ok {
		return email
	}
	return ""
}

// WithPrincipal injects the authenticated principal into the context.
func WithPrincipal(ctx context.Context, id uuid.UUID, role Role) context.Context {
	ctx = context.WithValue(ctx, ContextKeyPrincipalID, id)
	return context.WithValue(ctx, ContextKeyRole, role)
}

// WithEmail injects the principal's email into the context.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ContextKeyEmail, email)
}

// TokenID retrieves the token's jti, used by logout to revoke the token.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return jti
	}
	return ""
}

// WithTokenID injects the token jti into the context.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the normalized User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so workflow decisions that
// compare against "now" (ID request expiry) are deterministic in tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
