// Package store defines the entity model and the persistence contract the
// domain services are written against. Implementations live in memstore
// (in-memory, used by tests and the memory driver) and pgstore (PostgreSQL).
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned whenever a referenced id does not resolve.
var ErrNotFound = errors.New("record not found")

type Store interface {
	UserStore
	DepartmentStore
	EmployeeStore
	CriterionStore
	PeriodStore
	EvaluationStore
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) (int64, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) error
	DeleteUser(ctx context.Context, id int64) error

	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, role Role) (int64, error)
	ListUserRoles(ctx context.Context, userID int64) ([]Role, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

type DepartmentStore interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id int64) (Department, error)
	CreateDepartment(ctx context.Context, department Department) (int64, error)
	UpdateDepartment(ctx context.Context, id int64, patch DepartmentPatch) error
	DeleteDepartment(ctx context.Context, id int64) error
	CountEmployeesByDepartment(ctx context.Context, departmentID int64) (int, error)
}

type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]Employee, error)
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID int64) (Employee, error)
	GetEmployeeByNumber(ctx context.Context, number string) (Employee, error)
	CreateEmployee(ctx context.Context, employee Employee) (int64, error)
	UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch) error
	DeleteEmployee(ctx context.Context, id int64) error
	CountEmployeesByManager(ctx context.Context, managerID int64) (int, error)
}

type CriterionStore interface {
	ListCriteria(ctx context.Context) ([]Criterion, error)
	ListActiveCriteria(ctx context.Context) ([]Criterion, error)
	GetCriterion(ctx context.Context, id int64) (Criterion, error)
	CreateCriterion(ctx context.Context, criterion Criterion) (int64, error)
	UpdateCriterion(ctx context.Context, id int64, patch CriterionPatch) error
	DeleteCriterion(ctx context.Context, id int64) error
	CountDetailsByCriterion(ctx context.Context, criterionID int64) (int, error)
}

type PeriodStore interface {
	ListPeriods(ctx context.Context) ([]Period, error)
	GetPeriod(ctx context.Context, id int64) (Period, error)
	ActivePeriod(ctx context.Context) (Period, error)
	CreatePeriod(ctx context.Context, period Period) (int64, error)
	UpdatePeriod(ctx context.Context, id int64, patch PeriodPatch) error
	DeletePeriod(ctx context.Context, id int64) error
	CountEvaluationsByPeriod(ctx context.Context, periodID int64) (int, error)
}

type EvaluationStore interface {
	ListEvaluations(ctx context.Context) ([]Evaluation, error)
	ListEvaluationsByEvaluator(ctx context.Context, evaluatorID int64) ([]Evaluation, error)
	ListEvaluationsByPeriod(ctx context.Context, periodID int64) ([]Evaluation, error)
	GetEvaluation(ctx context.Context, id int64) (Evaluation, error)
	EvaluationByEmployeeAndPeriod(ctx context.Context, employeeID, periodID int64) (Evaluation, error)
	CreateEvaluation(ctx context.Context, evaluation Evaluation) (int64, error)
	UpdateEvaluation(ctx context.Context, id int64, patch EvaluationPatch) error
	DeleteEvaluation(ctx context.Context, id int64) error
	CountEvaluationsInvolving(ctx context.Context, employeeID int64) (int, error)

	ListDetailsByEvaluation(ctx context.Context, evaluationID int64) ([]EvaluationDetail, error)
	GetDetail(ctx context.Context, id int64) (EvaluationDetail, error)
	CreateDetail(ctx context.Context, detail EvaluationDetail) (int64, error)
	UpdateDetail(ctx context.Context, id int64, patch EvaluationDetailPatch) error
	DeleteDetailsByEvaluation(ctx context.Context, evaluationID int64) error
}
