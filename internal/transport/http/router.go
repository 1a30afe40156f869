// Package httptransport assembles the full route tree. Feature handlers stay
// thin; this package only decides which middleware guards which subtree.
package httptransport

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "locality/internal/audit/handler"
	authhandler "locality/internal/auth/handler"
	certhandler "locality/internal/certificate/handler"
	dirhandler "locality/internal/directory/handler"
	househandler "locality/internal/household/handler"
	idhandler "locality/internal/idcard/handler"
	"locality/internal/platform/metrics"
	"locality/internal/platform/middleware"
	vaulthandler "locality/internal/vault/handler"
	"locality/pkg/requestcontext"
)

// Handlers bundles the feature handlers the router mounts.
type Handlers struct {
	Auth      *authhandler.Handler
	Directory *dirhandler.Handler
	IDCard    *idhandler.Handler
	Cert      *certhandler.Handler
	Vault     *vaulthandler.Handler
	Household *househandler.Handler
	Audit     *audithandler.Handler
}

// NewRouter wires middleware and routes. Admin endpoints live under /admin,
// family-head endpoints under /household, auth endpoints under /auth.
func NewRouter(h Handlers, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", healthz(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		h.Auth.RegisterAuthenticated(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(validator, logger, requestcontext.RoleAdmin))
		h.Directory.RegisterAdmin(r)
		h.IDCard.RegisterAdmin(r)
		h.Cert.RegisterAdmin(r)
		h.Vault.RegisterAdmin(r)
		h.Household.RegisterAdmin(r)
		h.Audit.RegisterAdmin(r)
	})

	r.Route("/household", func(r chi.Router) {
		r.Use(middleware.RequireRole(validator, logger, requestcontext.RoleFamilyHead))
		h.Directory.RegisterHead(r)
		h.IDCard.RegisterHead(r)
		h.Cert.RegisterHead(r)
		h.Vault.RegisterHead(r)
		h.Household.RegisterHead(r)
	})

	return r
}

// healthz reports liveness, and readiness of the database when one is
// configured.
func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":false,"message":"database unavailable"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true}`))
	}
}
