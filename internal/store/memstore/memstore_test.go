package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"appraisal/internal/store"
)

func TestUserLookups(t *testing.T) {
	m := New()
	ctx := context.Background()

	id, err := m.CreateUser(ctx, store.User{Username: "JDoe", Email: "JDoe@Example.com", IsActive: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Username and email lookups are case-insensitive.
	if u, err := m.GetUserByUsername(ctx, "jdoe"); err != nil || u.ID != id {
		t.Fatalf("get by username: user=%+v err=%v", u, err)
	}
	if u, err := m.GetUserByEmail(ctx, "jdoe@example.com"); err != nil || u.ID != id {
		t.Fatalf("get by email: user=%+v err=%v", u, err)
	}
	if _, err := m.GetUser(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserPatchIsPartial(t *testing.T) {
	m := New()
	ctx := context.Background()

	id, err := m.CreateUser(ctx, store.User{Username: "jdoe", Email: "jdoe@example.com", FullName: "Jess Doe", IsActive: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	name := "Jess A. Doe"
	if err := m.UpdateUser(ctx, id, store.UserPatch{FullName: &name}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	user, err := m.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.FullName != name {
		t.Fatalf("expected full name updated, got %q", user.FullName)
	}
	if user.Username != "jdoe" || user.Email != "jdoe@example.com" || !user.IsActive {
		t.Fatalf("untouched fields changed: %+v", user)
	}

	if err := m.UpdateUser(ctx, 999, store.UserPatch{FullName: &name}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoleAssignments(t *testing.T) {
	m := New()
	ctx := context.Background()

	userID, err := m.CreateUser(ctx, store.User{Username: "jdoe", IsActive: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	adminID, err := m.CreateRole(ctx, store.Role{Name: "admin"})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	hrID, err := m.CreateRole(ctx, store.Role{Name: "hr_manager"})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}

	if err := m.AssignRole(ctx, userID, adminID); err != nil {
		t.Fatalf("assign role: %v", err)
	}
	// Assigning twice is a no-op, not an error.
	if err := m.AssignRole(ctx, userID, adminID); err != nil {
		t.Fatalf("re-assign role: %v", err)
	}
	if err := m.AssignRole(ctx, userID, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown role, got %v", err)
	}

	if err := m.ReplaceUserRoles(ctx, userID, []int64{adminID, hrID}); err != nil {
		t.Fatalf("replace roles: %v", err)
	}
	roles, err := m.ListUserRoles(ctx, userID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 || roles[0].ID != adminID || roles[1].ID != hrID {
		t.Fatalf("expected [admin hr_manager] ordered by id, got %+v", roles)
	}

	if err := m.ReplaceUserRoles(ctx, userID, nil); err != nil {
		t.Fatalf("clear roles: %v", err)
	}
	roles, err = m.ListUserRoles(ctx, userID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no roles, got %+v", roles)
	}

	if err := m.RemoveRole(ctx, userID, adminID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing unassigned role, got %v", err)
	}
}

func TestEmployeePatchClearsOptionalFields(t *testing.T) {
	m := New()
	ctx := context.Background()

	departmentID, err := m.CreateDepartment(ctx, store.Department{Name: "Engineering", Code: "ENG"})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	managerID, err := m.CreateEmployee(ctx, store.Employee{EmployeeNumber: "E001", FullName: "Mani Ager", DepartmentID: departmentID, IsActive: true})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	id, err := m.CreateEmployee(ctx, store.Employee{EmployeeNumber: "E002", FullName: "Jess Doe", DepartmentID: departmentID, ManagerID: &managerID, IsActive: true})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	// A nil outer pointer leaves the field alone.
	position := "Engineer"
	if err := m.UpdateEmployee(ctx, id, store.EmployeePatch{Position: &position}); err != nil {
		t.Fatalf("update position: %v", err)
	}
	employee, err := m.GetEmployee(ctx, id)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if employee.ManagerID == nil || *employee.ManagerID != managerID {
		t.Fatalf("manager link lost on unrelated patch: %+v", employee)
	}

	// A non-nil outer pointer wrapping nil clears the field.
	var noManager *int64
	if err := m.UpdateEmployee(ctx, id, store.EmployeePatch{ManagerID: &noManager}); err != nil {
		t.Fatalf("clear manager: %v", err)
	}
	employee, err = m.GetEmployee(ctx, id)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if employee.ManagerID != nil {
		t.Fatalf("expected manager cleared, got %v", *employee.ManagerID)
	}
}

func TestActivePeriod(t *testing.T) {
	m := New()
	ctx := context.Background()

	if _, err := m.ActivePeriod(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no periods, got %v", err)
	}

	if _, err := m.CreatePeriod(ctx, store.Period{Name: "2025", Year: 2025}); err != nil {
		t.Fatalf("create period: %v", err)
	}
	activeID, err := m.CreatePeriod(ctx, store.Period{Name: "2026", Year: 2026, IsActive: true})
	if err != nil {
		t.Fatalf("create period: %v", err)
	}

	period, err := m.ActivePeriod(ctx)
	if err != nil {
		t.Fatalf("active period: %v", err)
	}
	if period.ID != activeID {
		t.Fatalf("expected period %d active, got %d", activeID, period.ID)
	}
}

func seedEvaluation(t *testing.T, m *Memory) (evaluationID, employeeID, periodID int64) {
	t.Helper()
	ctx := context.Background()

	departmentID, err := m.CreateDepartment(ctx, store.Department{Name: "Engineering", Code: "ENG"})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	employeeID, err = m.CreateEmployee(ctx, store.Employee{EmployeeNumber: "E001", FullName: "Jess Doe", DepartmentID: departmentID, IsActive: true})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	evaluatorID, err := m.CreateEmployee(ctx, store.Employee{EmployeeNumber: "E002", FullName: "Mani Ager", DepartmentID: departmentID, IsActive: true})
	if err != nil {
		t.Fatalf("create evaluator: %v", err)
	}
	periodID, err = m.CreatePeriod(ctx, store.Period{Name: "2026", Year: 2026, IsActive: true})
	if err != nil {
		t.Fatalf("create period: %v", err)
	}
	evaluationID, err = m.CreateEvaluation(ctx, store.Evaluation{
		EmployeeID: employeeID, EvaluatorID: evaluatorID, PeriodID: periodID, Status: store.StatusDraft,
	})
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	return evaluationID, employeeID, periodID
}

func TestEvaluationPatchSetsAndClears(t *testing.T) {
	m := New()
	ctx := context.Background()
	evaluationID, _, _ := seedEvaluation(t, m)

	total := 7.5
	totalPtr := &total
	when := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	whenPtr := &when
	status := store.StatusSubmitted
	if err := m.UpdateEvaluation(ctx, evaluationID, store.EvaluationPatch{
		Status:         &status,
		TotalScore:     &totalPtr,
		SubmissionDate: &whenPtr,
	}); err != nil {
		t.Fatalf("update evaluation: %v", err)
	}

	evaluation, err := m.GetEvaluation(ctx, evaluationID)
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if evaluation.Status != store.StatusSubmitted {
		t.Fatalf("expected submitted, got %d", evaluation.Status)
	}
	if evaluation.TotalScore == nil || *evaluation.TotalScore != 7.5 {
		t.Fatalf("expected total 7.5, got %v", evaluation.TotalScore)
	}
	if evaluation.SubmissionDate == nil || !evaluation.SubmissionDate.Equal(when) {
		t.Fatalf("expected submission date stamped, got %v", evaluation.SubmissionDate)
	}

	var clearTotal *float64
	if err := m.UpdateEvaluation(ctx, evaluationID, store.EvaluationPatch{TotalScore: &clearTotal}); err != nil {
		t.Fatalf("clear total: %v", err)
	}
	evaluation, err = m.GetEvaluation(ctx, evaluationID)
	if err != nil {
		t.Fatalf("get evaluation: %v", err)
	}
	if evaluation.TotalScore != nil {
		t.Fatalf("expected total cleared, got %v", *evaluation.TotalScore)
	}
	if evaluation.SubmissionDate == nil {
		t.Fatalf("submission date lost on unrelated patch")
	}
}

func TestEvaluationByEmployeeAndPeriod(t *testing.T) {
	m := New()
	ctx := context.Background()
	evaluationID, employeeID, periodID := seedEvaluation(t, m)

	found, err := m.EvaluationByEmployeeAndPeriod(ctx, employeeID, periodID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != evaluationID {
		t.Fatalf("expected evaluation %d, got %d", evaluationID, found.ID)
	}
	if _, err := m.EvaluationByEmployeeAndPeriod(ctx, employeeID, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDetailsByEvaluation(t *testing.T) {
	m := New()
	ctx := context.Background()
	evaluationID, _, _ := seedEvaluation(t, m)

	criterionID, err := m.CreateCriterion(ctx, store.Criterion{Name: "Quality", Weight: 1, MaxScore: 10, IsActive: true})
	if err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := m.CreateDetail(ctx, store.EvaluationDetail{EvaluationID: evaluationID, CriterionID: criterionID}); err != nil {
			t.Fatalf("create detail: %v", err)
		}
	}

	if err := m.DeleteDetailsByEvaluation(ctx, evaluationID); err != nil {
		t.Fatalf("delete details: %v", err)
	}
	details, err := m.ListDetailsByEvaluation(ctx, evaluationID)
	if err != nil {
		t.Fatalf("list details: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("expected no details, got %d", len(details))
	}
}
