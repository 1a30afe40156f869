// Package handler wires the document vault endpoints. Uploads arrive as
// multipart forms; the saved file reference is recorded append-only.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"locality/internal/vault"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

const maxUploadBytes = 8 << 20 // 8 MiB

// Service defines the vault operations the handler needs.
type Service interface {
	Attach(ctx context.Context, headID uuid.UUID, memberID *uuid.UUID, label, fileRef string) (vault.Document, error)
	ListByHead(ctx context.Context, headID uuid.UUID) ([]vault.Document, error)
}

// Saver persists uploaded bytes and returns an opaque file reference.
type Saver interface {
	SaveUpload(kind, filename string, data []byte) (string, error)
}

type Handler struct {
	service Service
	saver   Saver
	logger  *slog.Logger
}

func New(service Service, saver Saver, logger *slog.Logger) *Handler {
	return &Handler{service: service, saver: saver, logger: logger}
}

// RegisterHead mounts the upload endpoints for family heads.
func (h *Handler) RegisterHead(r chi.Router) {
	r.Post("/documents", h.HandleUpload)
	r.Get("/documents", h.HandleListOwn)
}

// RegisterAdmin mounts the per-head listing for reviewers.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/heads/{headID}/documents", h.HandleListByHead)
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	headID := requestcontext.PrincipalID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "request must be a multipart form under the size limit"))
		return
	}

	label := strings.TrimSpace(r.FormValue("label"))
	if label == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "label is required"))
		return
	}

	var memberID *uuid.UUID
	if raw := strings.TrimSpace(r.FormValue("member_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "member_id must be a valid UUID"))
			return
		}
		memberID = &id
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to read upload", err))
		return
	}

	fileRef, err := h.saver.SaveUpload("vault", header.Filename, data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Attach(ctx, headID, memberID, label, fileRef)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document attached",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", doc.ID,
		"head_id", headID,
		"size_bytes", len(data),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListByHead(r.Context(), requestcontext.PrincipalID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDocuments(docs))
}

func (h *Handler) HandleListByHead(w http.ResponseWriter, r *http.Request) {
	headID, err := uuid.Parse(chi.URLParam(r, "headID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "headID must be a valid UUID"))
		return
	}
	docs, err := h.service.ListByHead(r.Context(), headID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDocuments(docs))
}
