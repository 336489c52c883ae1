package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhub/internal/authz"
	"taskhub/internal/rbac"
	"taskhub/internal/transport/http/shared"
	"taskhub/internal/user/models"
	"taskhub/internal/user/service"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/requestcontext"
)

// Handler exposes user management over HTTP. Listing the whole directory is
// an admin operation; destructive removal is reserved for owners.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user routes with their authorization contracts.
func (h *Handler) Register(r chi.Router, az *authz.Authorizer) {
	admin := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleAdmin},
	})
	adminOwned := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleAdmin},
		Ownership:     true,
	})
	viewer := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleViewer},
	})
	viewerOwned := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleViewer},
		Ownership:     true,
	})
	owner := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleOwner},
	})

	r.Route("/users", func(r chi.Router) {
		r.With(admin).Get("/", h.handleList)
		r.With(adminOwned).Post("/", h.handleCreate)
		r.With(viewerOwned).Get("/organization/{organizationId}", h.handleListByOrganization)
		r.With(viewer).Get("/{id}", h.handleGet)
		r.With(admin).Put("/{id}", h.handleUpdate)
		r.With(owner).Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.List(ctx)
	if err != nil {
		h.logError(r, "failed to list users", err)
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, usersOrEmpty(users))
}

func (h *Handler) handleListByOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	users, err := h.service.ListByOrganization(ctx, orgID)
	if err != nil {
		h.logError(r, "failed to list users", err)
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, usersOrEmpty(users))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func usersOrEmpty(users []*models.User) []*models.User {
	if users == nil {
		return []*models.User{}
	}
	return users
}
