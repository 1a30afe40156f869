package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"

	"locality/pkg/requestcontext"
)

// AdminContext returns a context authenticated as an admin principal.
func AdminContext(adminID uuid.UUID) context.Context {
	return requestcontext.WithPrincipal(context.Background(), adminID, requestcontext.RoleAdmin)
}

// HeadContext returns a context authenticated as a family-head principal.
func HeadContext(headID uuid.UUID) context.Context {
	return requestcontext.WithPrincipal(context.Background(), headID, requestcontext.RoleFamilyHead)
}

// ContextAt pins the request clock so time-dependent assertions are exact.
func ContextAt(ctx context.Context, at time.Time) context.Context {
	return requestcontext.WithTime(ctx, at)
}
