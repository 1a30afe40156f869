// Package handler wires the certificate endpoints. Each vital-event kind gets
// the same route shape under its own path segment.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"locality/internal/certificate"
	"locality/internal/certificate/service"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

// Service defines the certificate operations the handler needs.
type Service interface {
	Request(ctx context.Context, kind certificate.Kind, headID uuid.UUID, params service.RequestParams) (certificate.Certificate, error)
	SetStatus(ctx context.Context, id uuid.UUID, status certificate.Status) (certificate.Certificate, error)
	Detail(ctx context.Context, id, ownerID uuid.UUID) (certificate.Detail, error)
	ListByHead(ctx context.Context, headID uuid.UUID, kind certificate.Kind) ([]certificate.Certificate, error)
	ListByStatus(ctx context.Context, kind certificate.Kind, status certificate.Status) ([]certificate.Certificate, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the review endpoints for every kind.
func (h *Handler) RegisterAdmin(r chi.Router) {
	for _, kind := range certificate.Kinds {
		kind := kind
		r.Route("/certificates/"+string(kind), func(r chi.Router) {
			r.Get("/", h.listByStatus(kind))
			r.Get("/{certID}", h.HandleAdminDetail)
			r.Patch("/{certID}/status", h.handleSetStatus(kind))
		})
	}
}

// RegisterHead mounts the request endpoints for every kind.
func (h *Handler) RegisterHead(r chi.Router) {
	for _, kind := range certificate.Kinds {
		kind := kind
		r.Route("/certificates/"+string(kind), func(r chi.Router) {
			r.Post("/", h.handleRequest(kind))
			r.Get("/", h.listOwn(kind))
			r.Get("/{certID}", h.HandleOwnDetail)
		})
	}
}

func (h *Handler) handleRequest(kind certificate.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, ok := httputil.DecodeAndPrepare[certificateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		cert, err := h.service.Request(ctx, kind, requestcontext.PrincipalID(ctx), req.params())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "certificate requested",
			"request_id", requestcontext.RequestID(ctx),
			"certificate_id", cert.ID,
			"kind", kind,
			"member_id", cert.MemberID,
		)
		httputil.WriteJSON(w, http.StatusCreated, FromCertificate(cert))
	}
}

func (h *Handler) listOwn(kind certificate.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		certs, err := h.service.ListByHead(r.Context(), requestcontext.PrincipalID(r.Context()), kind)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, fromCertificates(certs))
	}
}

func (h *Handler) listByStatus(kind certificate.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := certificate.Status(r.URL.Query().Get("status"))
		if status == "" {
			status = certificate.StatusPending
		}
		certs, err := h.service.ListByStatus(r.Context(), kind, status)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, fromCertificates(certs))
	}
}

func (h *Handler) handleSetStatus(kind certificate.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := pathID(r, "certID")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req, ok := httputil.DecodeAndPrepare[statusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		cert, err := h.service.SetStatus(ctx, id, certificate.Status(req.Status))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "certificate decided",
			"request_id", requestcontext.RequestID(ctx),
			"certificate_id", id,
			"kind", kind,
			"status", req.Status,
		)
		httputil.WriteJSON(w, http.StatusOK, FromCertificate(cert))
	}
}

func (h *Handler) HandleOwnDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleAdminDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, uuid.Nil)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	id, err := pathID(r, "certID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.Detail(r.Context(), id, ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDetail(detail))
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, name+" must be a valid UUID")
	}
	return id, nil
}
