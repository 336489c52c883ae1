package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhub/internal/authz"
	"taskhub/internal/organization/models"
	"taskhub/internal/organization/service"
	"taskhub/internal/rbac"
	"taskhub/internal/transport/http/shared"
	usermodels "taskhub/internal/user/models"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/requestcontext"
)

// Handler exposes organization management over HTTP. Reads are open to any
// member; mutations are reserved for owners.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the organization routes with their authorization
// contracts. These routes address organizations by the plain id parameter,
// so the ownership middleware has no organizationId to compare and the role
// guard alone gates access.
func (h *Handler) Register(r chi.Router, az *authz.Authorizer) {
	viewer := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleViewer},
	})
	owner := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleOwner},
	})

	r.Route("/organizations", func(r chi.Router) {
		r.With(viewer).Get("/", h.handleList)
		r.With(owner).Post("/", h.handleCreate)
		r.With(viewer).Get("/{id}", h.handleGet)
		r.With(viewer).Get("/{id}/users", h.handleListMembers)
		r.With(owner).Put("/{id}", h.handleUpdate)
		r.With(owner).Delete("/{id}", h.handleDeactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list organizations",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, r, err)
		return
	}
	if orgs == nil {
		orgs = []*models.Organization{}
	}
	shared.WriteJSON(w, http.StatusOK, orgs)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	org, err := h.service.Create(r.Context(), req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	org, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	users, err := h.service.ListMembers(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if users == nil {
		users = []*usermodels.User{}
	}
	shared.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	var req models.UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	org, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	org, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, org)
}
