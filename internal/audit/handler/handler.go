package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskhub/internal/audit"
	"taskhub/internal/authz"
	"taskhub/internal/rbac"
	"taskhub/internal/transport/http/shared"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/requestcontext"
)

const (
	organizationListLimit = 100
	recentListLimit       = 20
	userListLimit         = 50
)

// Handler serves the audit trail query endpoints. All routes require admin
// rank and organization ownership: operators may only inspect their own
// tenant's trail.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit-log routes with their authorization contracts.
func (h *Handler) Register(r chi.Router, az *authz.Authorizer) {
	adminOwned := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleAdmin},
		Ownership:     true,
	})
	r.With(adminOwned).Get("/audit-logs/organization/{organizationId}", h.handleListByOrganization)
	r.With(adminOwned).Get("/audit-logs/organization/{organizationId}/recent", h.handleListRecent)
	r.With(adminOwned).Get("/audit-logs/organization/{organizationId}/user/{userId}", h.handleListByUser)
}

func (h *Handler) handleListByOrganization(w http.ResponseWriter, r *http.Request) {
	h.listForOrganization(w, r, organizationListLimit)
}

func (h *Handler) handleListRecent(w http.ResponseWriter, r *http.Request) {
	h.listForOrganization(w, r, recentListLimit)
}

func (h *Handler) listForOrganization(w http.ResponseWriter, r *http.Request, limit int) {
	ctx := r.Context()
	orgID, err := uuid.Parse(chi.URLParam(r, "organizationId"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}
	entries, err := h.store.ListByOrganization(ctx, orgID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit entries",
			"error", err,
			"organization_id", orgID,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, r, dErrors.New(dErrors.CodeInternal, "failed to list audit logs"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, entriesOrEmpty(entries))
}

func (h *Handler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	entries, err := h.store.ListByUser(ctx, userID, userListLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit entries",
			"error", err,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, r, dErrors.New(dErrors.CodeInternal, "failed to list audit logs"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, entriesOrEmpty(entries))
}

func entriesOrEmpty(entries []audit.Entry) []audit.Entry {
	if entries == nil {
		return []audit.Entry{}
	}
	return entries
}
