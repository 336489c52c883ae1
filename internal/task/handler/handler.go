package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhub/internal/authz"
	"taskhub/internal/rbac"
	"taskhub/internal/task/models"
	"taskhub/internal/task/service"
	"taskhub/internal/transport/http/shared"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/requestcontext"
)

// Handler exposes task management over HTTP. Every route carries the
// ownership check: it bites on routes that reference an organization and is
// a no-op on the rest.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the task routes with their authorization contracts.
func (h *Handler) Register(r chi.Router, az *authz.Authorizer) {
	viewer := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleViewer},
		Ownership:     true,
	})
	admin := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleAdmin},
		Ownership:     true,
	})
	owner := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleOwner},
		Ownership:     true,
	})

	r.Route("/tasks", func(r chi.Router) {
		r.With(viewer).Get("/", h.handleList)
		r.With(admin).Post("/", h.handleCreate)
		r.With(viewer).Get("/organization/{organizationId}", h.handleListByOrganization)
		r.With(viewer).Get("/assignee/{assigneeId}", h.handleListByAssignee)
		r.With(viewer).Get("/{id}", h.handleGet)
		r.With(admin).Put("/{id}", h.handleUpdate)
		r.With(owner).Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (h *Handler) handleListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	tasks, err := h.service.ListByOrganization(r.Context(), orgID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (h *Handler) handleListByAssignee(w http.ResponseWriter, r *http.Request) {
	assigneeID, err := uuid.Parse(chi.URLParam(r, "assigneeId"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid assignee id"))
		return
	}
	tasks, err := h.service.ListByAssignee(r.Context(), assigneeID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tasksOrEmpty(tasks))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid task id"))
		return
	}
	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid task id"))
		return
	}
	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	task, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid task id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func tasksOrEmpty(tasks []*models.Task) []*models.Task {
	if tasks == nil {
		return []*models.Task{}
	}
	return tasks
}
