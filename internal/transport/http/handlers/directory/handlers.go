package directoryhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/directory"
	"appraisal/internal/store"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Access  *access.Service
	Store   store.Store
}

func NewHandler(service *directory.Service, acc *access.Service, s store.Store) *Handler {
	return &Handler{Service: service, Access: acc, Store: s}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "users"))
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleCreateUser)
		r.Get("/{userID}", h.handleGetUser)
		r.Put("/{userID}", h.handleUpdateUser)
		r.Delete("/{userID}", h.handleDeleteUser)
	})
	r.With(middleware.RequireRoute(h.Access, "users")).Get("/roles", h.handleListRoles)

	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "departments"))
		r.Get("/", h.handleListDepartments)
		r.Post("/", h.handleCreateDepartment)
		r.Get("/{departmentID}", h.handleGetDepartment)
		r.Put("/{departmentID}", h.handleUpdateDepartment)
		r.Delete("/{departmentID}", h.handleDeleteDepartment)
	})

	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "employees"))
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Get("/{employeeID}", h.handleGetEmployee)
		r.Put("/{employeeID}", h.handleUpdateEmployee)
		r.Delete("/{employeeID}", h.handleDeleteEmployee)
	})
}

func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, directory.ErrDuplicateUsername):
		api.Fail(w, http.StatusConflict, "duplicate_username", "username already taken", requestID)
	case errors.Is(err, directory.ErrDuplicateEmail):
		api.Fail(w, http.StatusConflict, "duplicate_email", "email already taken", requestID)
	case errors.Is(err, directory.ErrDuplicateEmployeeNumber):
		api.Fail(w, http.StatusConflict, "duplicate_employee_number", "employee number already taken", requestID)
	case errors.Is(err, directory.ErrUserInUse):
		api.Fail(w, http.StatusConflict, "user_in_use", "user account is referenced by an employee", requestID)
	case errors.Is(err, directory.ErrEmployeeInUse):
		api.Fail(w, http.StatusConflict, "employee_in_use", "employee is referenced by other records", requestID)
	case errors.Is(err, directory.ErrDepartmentInUse):
		api.Fail(w, http.StatusConflict, "department_in_use", "department still has employees", requestID)
	case errors.Is(err, directory.ErrSelfManager):
		api.Fail(w, http.StatusBadRequest, "self_manager", "an employee cannot manage themselves", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "userID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		failDomain(w, r, err, "user_get_failed", "failed to load user")
		return
	}
	roles, err := h.Store.ListUserRoles(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to load user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"user": user, "roles": roles}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string  `json:"username" validate:"required"`
		Password string  `json:"password" validate:"required,min=8"`
		Email    string  `json:"email" validate:"required,email"`
		FullName string  `json:"fullName" validate:"required"`
		IsActive *bool   `json:"isActive"`
		RoleIDs  []int64 `json:"roleIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	user, err := h.Service.CreateUser(r.Context(), directory.UserInput{
		Username: payload.Username,
		Password: payload.Password,
		Email:    payload.Email,
		FullName: payload.FullName,
		IsActive: active,
		RoleIDs:  payload.RoleIDs,
	})
	if err != nil {
		failDomain(w, r, err, "user_create_failed", "failed to create user")
		return
	}
	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "userID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Username *string `json:"username"`
		Email    *string `json:"email" validate:"omitempty,email"`
		FullName *string `json:"fullName"`
		IsActive *bool   `json:"isActive"`
		RoleIDs  []int64 `json:"roleIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateUser(r.Context(), id, directory.UserUpdate{
		Username: payload.Username,
		Email:    payload.Email,
		FullName: payload.FullName,
		IsActive: payload.IsActive,
		RoleIDs:  payload.RoleIDs,
	}); err != nil {
		failDomain(w, r, err, "user_update_failed", "failed to update user")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "userID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		failDomain(w, r, err, "user_delete_failed", "failed to delete user")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_list_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, roles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "departmentID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid department id", middleware.GetRequestID(r.Context()))
		return
	}
	department, err := h.Store.GetDepartment(r.Context(), id)
	if err != nil {
		failDomain(w, r, err, "department_get_failed", "failed to load department")
		return
	}
	api.Success(w, department, middleware.GetRequestID(r.Context()))
}

type departmentPayload struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code"`
	ManagerID   *int64 `json:"managerId"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	department, err := h.Service.CreateDepartment(r.Context(), directory.DepartmentInput{
		Name:        payload.Name,
		Code:        payload.Code,
		ManagerID:   payload.ManagerID,
		Description: payload.Description,
	})
	if err != nil {
		failDomain(w, r, err, "department_create_failed", "failed to create department")
		return
	}
	api.Created(w, department, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "departmentID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid department id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateDepartment(r.Context(), id, directory.DepartmentInput{
		Name:        payload.Name,
		Code:        payload.Code,
		ManagerID:   payload.ManagerID,
		Description: payload.Description,
	}); err != nil {
		failDomain(w, r, err, "department_update_failed", "failed to update department")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "departmentID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid department id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteDepartment(r.Context(), id); err != nil {
		failDomain(w, r, err, "department_delete_failed", "failed to delete department")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	departmentID, err := shared.QueryID(r, "departmentId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid department id", middleware.GetRequestID(r.Context()))
		return
	}

	var employees []store.Employee
	if departmentID != 0 {
		employees, err = h.Store.ListEmployeesByDepartment(r.Context(), departmentID)
	} else {
		employees, err = h.Store.ListEmployees(r.Context())
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "employeeID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", middleware.GetRequestID(r.Context()))
		return
	}
	employee, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		failDomain(w, r, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

type employeePayload struct {
	EmployeeNumber string `json:"employeeNumber" validate:"required"`
	FullName       string `json:"fullName" validate:"required"`
	DepartmentID   int64  `json:"departmentId" validate:"required"`
	Position       string `json:"position"`
	ManagerID      *int64 `json:"managerId"`
	UserID         *int64 `json:"userId"`
	HireDate       string `json:"hireDate"`
	IsActive       *bool  `json:"isActive"`
}

func (p employeePayload) toInput(w http.ResponseWriter, requestID string) (directory.EmployeeInput, bool) {
	input := directory.EmployeeInput{
		EmployeeNumber: p.EmployeeNumber,
		FullName:       p.FullName,
		DepartmentID:   p.DepartmentID,
		Position:       p.Position,
		ManagerID:      p.ManagerID,
		UserID:         p.UserID,
		IsActive:       true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.HireDate != "" {
		hireDate, err := shared.ParseDate(p.HireDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid hire date", requestID)
			return directory.EmployeeInput{}, false
		}
		input.HireDate = &hireDate
	}
	return input, true
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	input, ok := payload.toInput(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	employee, err := h.Service.CreateEmployee(r.Context(), input)
	if err != nil {
		failDomain(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "employeeID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	input, ok := payload.toInput(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	if err := h.Service.UpdateEmployee(r.Context(), id, input); err != nil {
		failDomain(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "employeeID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteEmployee(r.Context(), id); err != nil {
		failDomain(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
