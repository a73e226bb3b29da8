// Package directory manages the organizational reference data: user accounts
// with their role assignments, employees, and departments, including the
// referential guards that keep deletes safe.
package directory

import (
	"context"
	"errors"
	"time"

	"appraisal/internal/auth"
	"appraisal/internal/store"
)

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// Authenticate validates credentials against an active user account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (store.User, error) {
	user, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, err
	}
	if !user.IsActive {
		return store.User{}, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type UserInput struct {
	Username string
	Password string
	Email    string
	FullName string
	IsActive bool
	RoleIDs  []int64
}

func (s *Service) CreateUser(ctx context.Context, input UserInput) (store.User, error) {
	if err := s.checkUserUniqueness(ctx, input.Username, input.Email, 0); err != nil {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return store.User{}, err
	}

	id, err := s.Store.CreateUser(ctx, store.User{
		Username:     input.Username,
		PasswordHash: hash,
		Email:        input.Email,
		FullName:     input.FullName,
		IsActive:     input.IsActive,
	})
	if err != nil {
		return store.User{}, err
	}

	if len(input.RoleIDs) > 0 {
		if err := s.Store.ReplaceUserRoles(ctx, id, input.RoleIDs); err != nil {
			return store.User{}, err
		}
	}
	return s.Store.GetUser(ctx, id)
}

type UserUpdate struct {
	Username *string
	Email    *string
	FullName *string
	IsActive *bool
	RoleIDs  []int64 // nil leaves assignments untouched
}

func (s *Service) UpdateUser(ctx context.Context, userID int64, input UserUpdate) error {
	if _, err := s.Store.GetUser(ctx, userID); err != nil {
		return err
	}

	username := ""
	if input.Username != nil {
		username = *input.Username
	}
	email := ""
	if input.Email != nil {
		email = *input.Email
	}
	if err := s.checkUserUniqueness(ctx, username, email, userID); err != nil {
		return err
	}

	patch := store.UserPatch{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		IsActive: input.IsActive,
	}
	if err := s.Store.UpdateUser(ctx, userID, patch); err != nil {
		return err
	}

	if input.RoleIDs != nil {
		return s.Store.ReplaceUserRoles(ctx, userID, input.RoleIDs)
	}
	return nil
}

func (s *Service) checkUserUniqueness(ctx context.Context, username, email string, selfID int64) error {
	if username != "" {
		if existing, err := s.Store.GetUserByUsername(ctx, username); err == nil && existing.ID != selfID {
			return ErrDuplicateUsername
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	if email != "" {
		if existing, err := s.Store.GetUserByEmail(ctx, email); err == nil && existing.ID != selfID {
			return ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, updated string) error {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(updated)
	if err != nil {
		return err
	}
	return s.Store.UpdateUser(ctx, userID, store.UserPatch{PasswordHash: &hash})
}

func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) error {
	return s.Store.UpdateUser(ctx, userID, store.UserPatch{IsActive: &active})
}

// DeleteUser refuses to delete an account that an employee record points at.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.Store.GetUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.Store.GetEmployeeByUserID(ctx, userID); err == nil {
		return ErrUserInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return s.Store.DeleteUser(ctx, userID)
}

type EmployeeInput struct {
	EmployeeNumber string
	FullName       string
	DepartmentID   int64
	Position       string
	ManagerID      *int64
	UserID         *int64
	HireDate       *time.Time
	IsActive       bool
}

func (s *Service) CreateEmployee(ctx context.Context, input EmployeeInput) (store.Employee, error) {
	if err := s.checkEmployeeReferences(ctx, input, 0); err != nil {
		return store.Employee{}, err
	}

	id, err := s.Store.CreateEmployee(ctx, store.Employee{
		EmployeeNumber: input.EmployeeNumber,
		FullName:       input.FullName,
		DepartmentID:   input.DepartmentID,
		Position:       input.Position,
		ManagerID:      input.ManagerID,
		UserID:         input.UserID,
		HireDate:       input.HireDate,
		IsActive:       input.IsActive,
	})
	if err != nil {
		return store.Employee{}, err
	}
	return s.Store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID int64, input EmployeeInput) error {
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return err
	}
	if err := s.checkEmployeeReferences(ctx, input, employeeID); err != nil {
		return err
	}

	active := input.IsActive
	return s.Store.UpdateEmployee(ctx, employeeID, store.EmployeePatch{
		EmployeeNumber: &input.EmployeeNumber,
		FullName:       &input.FullName,
		DepartmentID:   &input.DepartmentID,
		Position:       &input.Position,
		ManagerID:      &input.ManagerID,
		UserID:         &input.UserID,
		HireDate:       &input.HireDate,
		IsActive:       &active,
	})
}

func (s *Service) checkEmployeeReferences(ctx context.Context, input EmployeeInput, selfID int64) error {
	if existing, err := s.Store.GetEmployeeByNumber(ctx, input.EmployeeNumber); err == nil && existing.ID != selfID {
		return ErrDuplicateEmployeeNumber
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.Store.GetDepartment(ctx, input.DepartmentID); err != nil {
		return err
	}

	if input.ManagerID != nil {
		if selfID != 0 && *input.ManagerID == selfID {
			return ErrSelfManager
		}
		if _, err := s.Store.GetEmployee(ctx, *input.ManagerID); err != nil {
			return err
		}
	}

	if input.UserID != nil {
		if _, err := s.Store.GetUser(ctx, *input.UserID); err != nil {
			return err
		}
		// At most one employee per user account.
		if linked, err := s.Store.GetEmployeeByUserID(ctx, *input.UserID); err == nil && linked.ID != selfID {
			return ErrUserInUse
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

// DeleteEmployee refuses to delete an employee that manages others or appears
// in any evaluation, as subject or evaluator.
func (s *Service) DeleteEmployee(ctx context.Context, employeeID int64) error {
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return err
	}

	reports, err := s.Store.CountEmployeesByManager(ctx, employeeID)
	if err != nil {
		return err
	}
	if reports > 0 {
		return ErrEmployeeInUse
	}

	involved, err := s.Store.CountEvaluationsInvolving(ctx, employeeID)
	if err != nil {
		return err
	}
	if involved > 0 {
		return ErrEmployeeInUse
	}

	return s.Store.DeleteEmployee(ctx, employeeID)
}

type DepartmentInput struct {
	Name        string
	Code        string
	ManagerID   *int64
	Description string
}

func (s *Service) CreateDepartment(ctx context.Context, input DepartmentInput) (store.Department, error) {
	if input.ManagerID != nil {
		if _, err := s.Store.GetEmployee(ctx, *input.ManagerID); err != nil {
			return store.Department{}, err
		}
	}
	id, err := s.Store.CreateDepartment(ctx, store.Department{
		Name:        input.Name,
		Code:        input.Code,
		ManagerID:   input.ManagerID,
		Description: input.Description,
	})
	if err != nil {
		return store.Department{}, err
	}
	return s.Store.GetDepartment(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID int64, input DepartmentInput) error {
	if _, err := s.Store.GetDepartment(ctx, departmentID); err != nil {
		return err
	}
	if input.ManagerID != nil {
		if _, err := s.Store.GetEmployee(ctx, *input.ManagerID); err != nil {
			return err
		}
	}
	return s.Store.UpdateDepartment(ctx, departmentID, store.DepartmentPatch{
		Name:        &input.Name,
		Code:        &input.Code,
		ManagerID:   &input.ManagerID,
		Description: &input.Description,
	})
}

// DeleteDepartment refuses to delete a department that still has employees.
func (s *Service) DeleteDepartment(ctx context.Context, departmentID int64) error {
	if _, err := s.Store.GetDepartment(ctx, departmentID); err != nil {
		return err
	}
	count, err := s.Store.CountEmployeesByDepartment(ctx, departmentID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}
	return s.Store.DeleteDepartment(ctx, departmentID)
}
