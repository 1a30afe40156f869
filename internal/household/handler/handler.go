// Package handler serves the assembled household overview.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	certhandler "locality/internal/certificate/handler"
	dirhandler "locality/internal/directory/handler"
	"locality/internal/household"
	idhandler "locality/internal/idcard/handler"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

// Service assembles a household overview.
type Service interface {
	Overview(ctx context.Context, headID uuid.UUID) (household.Overview, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterHead mounts the overview for the authenticated head.
func (h *Handler) RegisterHead(r chi.Router) {
	r.Get("/overview", h.HandleOwnOverview)
}

// RegisterAdmin mounts the overview keyed by head ID.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/heads/{headID}/overview", h.HandleHeadOverview)
}

func (h *Handler) HandleOwnOverview(w http.ResponseWriter, r *http.Request) {
	h.overview(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleHeadOverview(w http.ResponseWriter, r *http.Request) {
	headID, err := uuid.Parse(chi.URLParam(r, "headID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "headID must be a valid UUID"))
		return
	}
	h.overview(w, r, headID)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request, headID uuid.UUID) {
	overview, err := h.service.Overview(r.Context(), headID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOverview(overview))
}

// OverviewResponse is the wire form of an assembled household.
type OverviewResponse struct {
	Head    dirhandler.HeadResponse  `json:"head"`
	Members []MemberOverviewResponse `json:"members"`
}

// MemberOverviewResponse is one member with its workflow state.
type MemberOverviewResponse struct {
	Member             dirhandler.MemberResponse         `json:"member"`
	IDRequest          *idhandler.RequestResponse        `json:"id_request,omitempty"`
	ActiveCertificates []certhandler.CertificateResponse `json:"active_certificates"`
}

func fromOverview(o household.Overview) OverviewResponse {
	members := make([]MemberOverviewResponse, 0, len(o.Members))
	for _, m := range o.Members {
		entry := MemberOverviewResponse{
			Member:             dirhandler.FromMember(m.Member),
			ActiveCertificates: make([]certhandler.CertificateResponse, 0, len(m.ActiveCertificates)),
		}
		if m.IDRequest != nil {
			resp := idhandler.FromRequest(*m.IDRequest)
			entry.IDRequest = &resp
		}
		for _, cert := range m.ActiveCertificates {
			entry.ActiveCertificates = append(entry.ActiveCertificates, certhandler.FromCertificate(cert))
		}
		members = append(members, entry)
	}
	return OverviewResponse{Head: dirhandler.FromHead(o.Head), Members: members}
}
