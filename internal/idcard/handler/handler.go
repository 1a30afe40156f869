// Package handler wires the identity-card request endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"locality/internal/idcard"
	"locality/internal/idcard/service"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the identity-card operations the handler needs.
type Service interface {
	CreateOrResubmit(ctx context.Context, headID uuid.UUID, params service.SubmitParams) (idcard.Request, error)
	SetStatus(ctx context.Context, requestID uuid.UUID, status idcard.Status, expiresAt *time.Time) (idcard.Request, error)
	Get(ctx context.Context, requestID, ownerID uuid.UUID) (idcard.Request, error)
	ListByHead(ctx context.Context, headID uuid.UUID) ([]idcard.Request, error)
	ListByStatus(ctx context.Context, status idcard.Status) ([]idcard.Request, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the review endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/id-requests", h.HandleListByStatus)
	r.Get("/id-requests/{requestID}", h.HandleAdminGet)
	r.Patch("/id-requests/{requestID}/status", h.HandleSetStatus)
}

// RegisterHead mounts the applicant endpoints.
func (h *Handler) RegisterHead(r chi.Router) {
	r.Post("/id-requests", h.HandleSubmit)
	r.Get("/id-requests", h.HandleListOwn)
	r.Get("/id-requests/{requestID}", h.HandleGetOwn)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[submitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.service.CreateOrResubmit(ctx, requestcontext.PrincipalID(ctx), req.params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "identity card request submitted",
		"request_id", requestcontext.RequestID(ctx),
		"id_request_id", created.ID,
		"member_id", created.MemberID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRequest(created))
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListByHead(r.Context(), requestcontext.PrincipalID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRequests(requests))
}

func (h *Handler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleAdminGet(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, uuid.Nil)
}

func (h *Handler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	status := idcard.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = idcard.StatusPending
	}
	requests, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRequests(requests))
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "requestID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[statusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	updated, err := h.service.SetStatus(ctx, id, idcard.Status(req.Status), req.expiresAt())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "identity card request decided",
		"request_id", requestcontext.RequestID(ctx),
		"id_request_id", id,
		"status", req.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRequest(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	id, err := pathID(r, "requestID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	request, err := h.service.Get(r.Context(), id, ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(request))
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, name+" must be a valid UUID")
	}
	return id, nil
}
