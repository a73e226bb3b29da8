// Package access is the authorization engine. Every check takes the acting
// user explicitly; there is no process-wide current user. All predicates are
// plain booleans and deny by default, including when a lookup fails.
package access

import (
	"context"

	"appraisal/internal/store"
)

// Actor identifies the authenticated caller. EmployeeID is zero when the user
// has no linked employee record.
type Actor struct {
	UserID     int64
	EmployeeID int64
}

// RouteAll marks a route open to every actor.
const RouteAll = "all"

// RouteAccess declares the allowed role names per route.
var RouteAccess = map[string][]string{
	"login":          {RouteAll},
	"dashboard":      {store.RoleAdministrator, store.RoleHRManager, store.RoleDepartmentManager, store.RoleEmployee},
	"departments":    {store.RoleAdministrator, store.RoleHRManager},
	"employees":      {store.RoleAdministrator, store.RoleHRManager},
	"evaluations":    {store.RoleAdministrator, store.RoleHRManager, store.RoleDepartmentManager},
	"criteria":       {store.RoleAdministrator, store.RoleHRManager},
	"periods":        {store.RoleAdministrator, store.RoleHRManager},
	"reports":        {store.RoleAdministrator, store.RoleHRManager, store.RoleDepartmentManager},
	"users":          {store.RoleAdministrator},
	"profile":        {store.RoleAdministrator, store.RoleHRManager, store.RoleDepartmentManager, store.RoleEmployee},
	"changePassword": {store.RoleAdministrator, store.RoleHRManager, store.RoleDepartmentManager, store.RoleEmployee},
}

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// RolesOf returns the union of roles assigned to the user.
func (s *Service) RolesOf(ctx context.Context, userID int64) []store.Role {
	roles, err := s.Store.ListUserRoles(ctx, userID)
	if err != nil {
		return nil
	}
	return roles
}

func (s *Service) HasRole(ctx context.Context, userID int64, roleName string) bool {
	for _, role := range s.RolesOf(ctx, userID) {
		if role.Name == roleName {
			return true
		}
	}
	return false
}

func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	return s.HasRole(ctx, userID, store.RoleAdministrator)
}

func (s *Service) IsHRManager(ctx context.Context, userID int64) bool {
	return s.HasRole(ctx, userID, store.RoleHRManager)
}

func (s *Service) IsDepartmentManager(ctx context.Context, userID int64) bool {
	return s.HasRole(ctx, userID, store.RoleDepartmentManager)
}

// CanAccessRoute grants access when the route's allow-list contains one of the
// actor's roles, or the sentinel "all". Unknown routes are denied.
func (s *Service) CanAccessRoute(ctx context.Context, userID int64, routeName string) bool {
	allowed, ok := RouteAccess[routeName]
	if !ok {
		return false
	}
	for _, name := range allowed {
		if name == RouteAll {
			return true
		}
	}
	for _, role := range s.RolesOf(ctx, userID) {
		for _, name := range allowed {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}

// CanEvaluate reports whether the actor may create an evaluation for target.
// Administrators and HR managers may evaluate anyone; department managers may
// evaluate other employees of their own department; employees may evaluate
// no one.
func (s *Service) CanEvaluate(ctx context.Context, actor Actor, target store.Employee) bool {
	if s.IsAdmin(ctx, actor.UserID) || s.IsHRManager(ctx, actor.UserID) {
		return true
	}
	if !s.IsDepartmentManager(ctx, actor.UserID) {
		return false
	}
	if actor.EmployeeID == 0 || actor.EmployeeID == target.ID {
		return false
	}
	actorEmployee, err := s.Store.GetEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return false
	}
	return actorEmployee.DepartmentID == target.DepartmentID
}

// CanEditEvaluation: administrators always; HR managers unless the evaluation
// is completed; the evaluator only while it is still a draft.
func (s *Service) CanEditEvaluation(ctx context.Context, actor Actor, evaluation store.Evaluation) bool {
	if s.IsAdmin(ctx, actor.UserID) {
		return true
	}
	if s.IsHRManager(ctx, actor.UserID) && evaluation.Status != store.StatusCompleted {
		return true
	}
	if actor.EmployeeID == 0 {
		return false
	}
	return evaluation.EvaluatorID == actor.EmployeeID && evaluation.Status == store.StatusDraft
}

// CanDeleteEvaluation uses the same rule as editing.
func (s *Service) CanDeleteEvaluation(ctx context.Context, actor Actor, evaluation store.Evaluation) bool {
	return s.CanEditEvaluation(ctx, actor, evaluation)
}

// CanChangeStatus: administrators and HR managers always; department managers
// only for evaluations of employees in their own department.
func (s *Service) CanChangeStatus(ctx context.Context, actor Actor, evaluation store.Evaluation) bool {
	if s.IsAdmin(ctx, actor.UserID) || s.IsHRManager(ctx, actor.UserID) {
		return true
	}
	if !s.IsDepartmentManager(ctx, actor.UserID) || actor.EmployeeID == 0 {
		return false
	}
	actorEmployee, err := s.Store.GetEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return false
	}
	subject, err := s.Store.GetEmployee(ctx, evaluation.EmployeeID)
	if err != nil {
		return false
	}
	return subject.DepartmentID == actorEmployee.DepartmentID
}
