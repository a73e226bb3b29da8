package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/auth"
	"appraisal/internal/domain/access"
	"appraisal/internal/domain/directory"
	"appraisal/internal/store"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Directory *directory.Service
	Access    *access.Service
	Store     store.Store
	Secret    string
	TokenTTL  time.Duration
}

func NewHandler(dir *directory.Service, acc *access.Service, s store.Store, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{Directory: dir, Access: acc, Store: s, Secret: secret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireRoute(h.Access, "changePassword")).Post("/auth/change-password", h.handleChangePassword)
	r.With(middleware.RequireRoute(h.Access, "profile")).Get("/auth/me", h.handleProfile)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Directory.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", middleware.GetRequestID(r.Context()))
		return
	}

	roles, err := h.Store.ListUserRoles(r.Context(), user.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", middleware.GetRequestID(r.Context()))
		return
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	var employeeID int64
	if employee, err := h.Store.GetEmployeeByUserID(r.Context(), user.ID); err == nil {
		employeeID = employee.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Warn("login employee lookup failed", "err", err)
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     user.ID,
		EmployeeID: employeeID,
		Roles:      roleNames,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token":      token,
		"user":       user,
		"roles":      roleNames,
		"employeeId": employeeID,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Directory.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword); err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			api.Fail(w, http.StatusBadRequest, "invalid_credentials", "current password is incorrect", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "password_changed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	account, err := h.Store.GetUser(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}

	profile := map[string]any{
		"user":  account,
		"roles": user.Roles,
	}
	if user.EmployeeID != 0 {
		if employee, err := h.Store.GetEmployee(r.Context(), user.EmployeeID); err == nil {
			profile["employee"] = employee
		} else {
			slog.Warn("profile employee lookup failed", "err", err)
		}
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}
