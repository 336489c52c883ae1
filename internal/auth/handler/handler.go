package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/auth/service"
	"taskhub/internal/authz"
	"taskhub/internal/rbac"
	"taskhub/internal/transport/http/shared"
	usermodels "taskhub/internal/user/models"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/requestcontext"
)

// Handler exposes registration, login, profile, and logout. Register and
// login are the only public mutating routes in the system.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the auth routes. Any resolved member may read their own
// profile or log out; the viewer requirement is the authentication floor.
func (h *Handler) Register(r chi.Router, az *authz.Authorizer) {
	authenticated := az.Require(authz.RouteConfig{
		RequiredRoles: []rbac.RoleType{rbac.RoleViewer},
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.With(authenticated).Get("/me", h.handleProfile)
		r.With(authenticated).Post("/logout", h.handleLogout)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req usermodels.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"error", dErrors.MessageOf(err),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFrom(r.Context())
	if principal == nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated"))
		return
	}
	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated"))
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
