// Package handler wires the directory endpoints: head administration for
// admins, member submission and maintenance for family heads.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"locality/internal/directory"
	"locality/internal/directory/service"
	dErrors "locality/pkg/domain-errors"
	"locality/pkg/platform/httputil"
	"locality/pkg/requestcontext"
)

// Service defines the directory operations the handler needs.
type Service interface {
	AddHead(ctx context.Context, params service.AddHeadParams) (directory.FamilyHead, error)
	EditHead(ctx context.Context, id uuid.UUID, params service.EditHeadParams) (directory.FamilyHead, error)
	RemoveHead(ctx context.Context, id uuid.UUID) error
	RestoreHead(ctx context.Context, id uuid.UUID) error
	GetHead(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error)
	ListHeads(ctx context.Context, includeRemoved bool) ([]directory.FamilyHead, error)

	SubmitMember(ctx context.Context, headID uuid.UUID, params service.SubmitMemberParams) (directory.Member, error)
	SetMemberApproval(ctx context.Context, memberID uuid.UUID, decision directory.ApprovalStatus) (directory.Member, error)
	EditMember(ctx context.Context, memberID, ownerID uuid.UUID, params service.EditMemberParams) (directory.Member, error)
	RemoveMember(ctx context.Context, memberID, ownerID uuid.UUID) error
	RestoreMember(ctx context.Context, memberID, ownerID uuid.UUID) error
	GetMember(ctx context.Context, memberID, ownerID uuid.UUID) (directory.Member, error)
	ListMembers(ctx context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error)
	ListMembersByApproval(ctx context.Context, approval directory.ApprovalStatus) ([]directory.Member, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the admin-facing directory endpoints. The router
// guards the subtree with the admin role.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/heads", h.HandleAddHead)
	r.Get("/heads", h.HandleListHeads)
	r.Get("/heads/{headID}", h.HandleGetHead)
	r.Put("/heads/{headID}", h.HandleEditHead)
	r.Delete("/heads/{headID}", h.HandleRemoveHead)
	r.Post("/heads/{headID}/restore", h.HandleRestoreHead)
	r.Get("/heads/{headID}/members", h.HandleListHeadMembers)

	r.Get("/members", h.HandleListMembersByApproval)
	r.Get("/members/{memberID}", h.HandleAdminGetMember)
	r.Put("/members/{memberID}", h.HandleAdminEditMember)
	r.Delete("/members/{memberID}", h.HandleAdminRemoveMember)
	r.Post("/members/{memberID}/restore", h.HandleAdminRestoreMember)
	r.Patch("/members/{memberID}/approval", h.HandleSetMemberApproval)
}

// RegisterHead mounts the family-head-facing endpoints. The principal's own
// head ID scopes every operation.
func (h *Handler) RegisterHead(r chi.Router) {
	r.Get("/profile", h.HandleOwnProfile)
	r.Put("/profile", h.HandleEditOwnProfile)

	r.Post("/members", h.HandleSubmitMember)
	r.Get("/members", h.HandleListOwnMembers)
	r.Get("/members/{memberID}", h.HandleGetOwnMember)
	r.Put("/members/{memberID}", h.HandleEditOwnMember)
	r.Delete("/members/{memberID}", h.HandleRemoveOwnMember)
	r.Post("/members/{memberID}/restore", h.HandleRestoreOwnMember)
}

func (h *Handler) HandleAddHead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[headRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	head, err := h.service.AddHead(ctx, service.AddHeadParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		HouseNumber: req.HouseNumber,
		FamilySize:  req.FamilySize,
		PhotoRef:    req.PhotoRef,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "family head added",
		"request_id", requestcontext.RequestID(ctx), "head_id", head.ID)
	httputil.WriteJSON(w, http.StatusCreated, FromHead(head))
}

func (h *Handler) HandleListHeads(w http.ResponseWriter, r *http.Request) {
	includeRemoved := r.URL.Query().Get("include_removed") == "true"
	heads, err := h.service.ListHeads(r.Context(), includeRemoved)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromHeads(heads))
}

func (h *Handler) HandleGetHead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "headID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	head, err := h.service.GetHead(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHead(head))
}

func (h *Handler) HandleEditHead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "headID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.editHead(w, r, id)
}

func (h *Handler) HandleRemoveHead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "headID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveHead(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "family head removed")
}

func (h *Handler) HandleRestoreHead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "headID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RestoreHead(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "family head restored")
}

func (h *Handler) HandleListHeadMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "headID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	includeRemoved := r.URL.Query().Get("include_removed") == "true"
	members, err := h.service.ListMembers(r.Context(), id, includeRemoved)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMembers(members))
}

func (h *Handler) HandleListMembersByApproval(w http.ResponseWriter, r *http.Request) {
	approval := directory.ApprovalStatus(r.URL.Query().Get("approval"))
	if approval == "" {
		approval = directory.ApprovalPending
	}
	members, err := h.service.ListMembersByApproval(r.Context(), approval)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMembers(members))
}

func (h *Handler) HandleSetMemberApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "memberID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[approvalRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	member, err := h.service.SetMemberApproval(ctx, id, directory.ApprovalStatus(req.Decision))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "member approval decided",
		"request_id", requestcontext.RequestID(ctx), "member_id", id, "decision", req.Decision)
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

func (h *Handler) HandleAdminGetMember(w http.ResponseWriter, r *http.Request) {
	h.getMember(w, r, uuid.Nil)
}

func (h *Handler) HandleAdminEditMember(w http.ResponseWriter, r *http.Request) {
	h.editMember(w, r, uuid.Nil)
}

func (h *Handler) HandleAdminRemoveMember(w http.ResponseWriter, r *http.Request) {
	h.removeMember(w, r, uuid.Nil)
}

func (h *Handler) HandleAdminRestoreMember(w http.ResponseWriter, r *http.Request) {
	h.restoreMember(w, r, uuid.Nil)
}

func (h *Handler) HandleOwnProfile(w http.ResponseWriter, r *http.Request) {
	head, err := h.service.GetHead(r.Context(), requestcontext.PrincipalID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHead(head))
}

func (h *Handler) HandleEditOwnProfile(w http.ResponseWriter, r *http.Request) {
	h.editHead(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleSubmitMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[memberRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	member, err := h.service.SubmitMember(ctx, requestcontext.PrincipalID(ctx), req.submitParams())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "member submitted",
		"request_id", requestcontext.RequestID(ctx), "member_id", member.ID)
	httputil.WriteJSON(w, http.StatusCreated, FromMember(member))
}

func (h *Handler) HandleListOwnMembers(w http.ResponseWriter, r *http.Request) {
	includeRemoved := r.URL.Query().Get("include_removed") == "true"
	members, err := h.service.ListMembers(r.Context(), requestcontext.PrincipalID(r.Context()), includeRemoved)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMembers(members))
}

func (h *Handler) HandleGetOwnMember(w http.ResponseWriter, r *http.Request) {
	h.getMember(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleEditOwnMember(w http.ResponseWriter, r *http.Request) {
	h.editMember(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleRemoveOwnMember(w http.ResponseWriter, r *http.Request) {
	h.removeMember(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) HandleRestoreOwnMember(w http.ResponseWriter, r *http.Request) {
	h.restoreMember(w, r, requestcontext.PrincipalID(r.Context()))
}

func (h *Handler) editHead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[headRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	head, err := h.service.EditHead(ctx, id, service.EditHeadParams{
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		HouseNumber: req.HouseNumber,
		FamilySize:  req.FamilySize,
		PhotoRef:    req.PhotoRef,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHead(head))
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	id, err := pathID(r, "memberID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	member, err := h.service.GetMember(r.Context(), id, ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

func (h *Handler) editMember(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	ctx := r.Context()
	id, err := pathID(r, "memberID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[memberRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	member, err := h.service.EditMember(ctx, id, ownerID, req.editParams())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(member))
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	id, err := pathID(r, "memberID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveMember(r.Context(), id, ownerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "member removed")
}

func (h *Handler) restoreMember(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	id, err := pathID(r, "memberID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RestoreMember(r.Context(), id, ownerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "member restored")
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, name+" must be a valid UUID")
	}
	return id, nil
}
