// Package handler exposes the audit trail to admins.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"locality/internal/audit"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
)

// Service reads back recorded audit events.
type Service interface {
	ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]audit.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the audit read endpoint.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/audit/{entity}/{entityID}", h.HandleListByEntity)
}

func (h *Handler) HandleListByEntity(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	entityID, err := uuid.Parse(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "entityID must be a valid UUID"))
		return
	}
	events, err := h.service.ListByEntity(r.Context(), entity, entityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
