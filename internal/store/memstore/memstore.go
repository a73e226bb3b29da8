// Package memstore is the in-memory Store implementation. All state lives in
// maps guarded by a single RWMutex; readers get value copies, so no caller can
// observe a record mid-update. Ids are assigned from per-collection counters
// and never reused.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"appraisal/internal/store"
)

type Memory struct {
	mu sync.RWMutex

	users       map[int64]store.User
	roles       map[int64]store.Role
	assignments map[int64]map[int64]struct{} // userID -> set of roleIDs
	departments map[int64]store.Department
	employees   map[int64]store.Employee
	criteria    map[int64]store.Criterion
	periods     map[int64]store.Period
	evaluations map[int64]store.Evaluation
	details     map[int64]store.EvaluationDetail

	nextID map[string]int64
}

func New() *Memory {
	return &Memory{
		users:       map[int64]store.User{},
		roles:       map[int64]store.Role{},
		assignments: map[int64]map[int64]struct{}{},
		departments: map[int64]store.Department{},
		employees:   map[int64]store.Employee{},
		criteria:    map[int64]store.Criterion{},
		periods:     map[int64]store.Period{},
		evaluations: map[int64]store.Evaluation{},
		details:     map[int64]store.EvaluationDetail{},
		nextID:      map[string]int64{},
	}
}

func (m *Memory) allocate(collection string) int64 {
	m.nextID[collection]++
	return m.nextID[collection]
}

// Users

func (m *Memory) ListUsers(ctx context.Context) ([]store.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]store.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) GetUser(ctx context.Context, id int64) (store.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (store.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user store.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	user.ID = m.allocate("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *Memory) UpdateUser(ctx context.Context, id int64, patch store.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[id] = user
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	delete(m.assignments, id)
	return nil
}

// Roles

func (m *Memory) ListRoles(ctx context.Context) ([]store.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roles := make([]store.Role, 0, len(m.roles))
	for _, r := range m.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (m *Memory) GetRoleByName(ctx context.Context, name string) (store.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return store.Role{}, store.ErrNotFound
}

func (m *Memory) CreateRole(ctx context.Context, role store.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role.ID = m.allocate("roles")
	m.roles[role.ID] = role
	return role.ID, nil
}

func (m *Memory) ListUserRoles(ctx context.Context, userID int64) ([]store.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var roles []store.Role
	for roleID := range m.assignments[userID] {
		if role, ok := m.roles[roleID]; ok {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (m *Memory) AssignRole(ctx context.Context, userID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := m.roles[roleID]; !ok {
		return store.ErrNotFound
	}
	if m.assignments[userID] == nil {
		m.assignments[userID] = map[int64]struct{}{}
	}
	m.assignments[userID][roleID] = struct{}{}
	return nil
}

func (m *Memory) RemoveRole(ctx context.Context, userID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.assignments[userID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := set[roleID]; !ok {
		return store.ErrNotFound
	}
	delete(set, roleID)
	return nil
}

func (m *Memory) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrNotFound
	}
	set := map[int64]struct{}{}
	for _, roleID := range roleIDs {
		if _, ok := m.roles[roleID]; !ok {
			return store.ErrNotFound
		}
		set[roleID] = struct{}{}
	}
	m.assignments[userID] = set
	return nil
}

// Departments

func (m *Memory) ListDepartments(ctx context.Context) ([]store.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	departments := make([]store.Department, 0, len(m.departments))
	for _, d := range m.departments {
		departments = append(departments, d)
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].ID < departments[j].ID })
	return departments, nil
}

func (m *Memory) GetDepartment(ctx context.Context, id int64) (store.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	department, ok := m.departments[id]
	if !ok {
		return store.Department{}, store.ErrNotFound
	}
	return department, nil
}

func (m *Memory) CreateDepartment(ctx context.Context, department store.Department) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	department.ID = m.allocate("departments")
	department.CreatedAt = now
	department.UpdatedAt = now
	m.departments[department.ID] = department
	return department.ID, nil
}

func (m *Memory) UpdateDepartment(ctx context.Context, id int64, patch store.DepartmentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	department, ok := m.departments[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		department.Name = *patch.Name
	}
	if patch.Code != nil {
		department.Code = *patch.Code
	}
	if patch.ManagerID != nil {
		department.ManagerID = *patch.ManagerID
	}
	if patch.Description != nil {
		department.Description = *patch.Description
	}
	department.UpdatedAt = time.Now().UTC()
	m.departments[id] = department
	return nil
}

func (m *Memory) DeleteDepartment(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.departments[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.departments, id)
	return nil
}

func (m *Memory) CountEmployeesByDepartment(ctx context.Context, departmentID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.employees {
		if e.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

// Employees

func (m *Memory) ListEmployees(ctx context.Context) ([]store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employees := make([]store.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (m *Memory) ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var employees []store.Employee
	for _, e := range m.employees {
		if e.DepartmentID == departmentID {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (m *Memory) GetEmployee(ctx context.Context, id int64) (store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employee, ok := m.employees[id]
	if !ok {
		return store.Employee{}, store.ErrNotFound
	}
	return employee, nil
}

func (m *Memory) GetEmployeeByUserID(ctx context.Context, userID int64) (store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return store.Employee{}, store.ErrNotFound
}

func (m *Memory) GetEmployeeByNumber(ctx context.Context, number string) (store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if strings.EqualFold(e.EmployeeNumber, number) {
			return e, nil
		}
	}
	return store.Employee{}, store.ErrNotFound
}

func (m *Memory) CreateEmployee(ctx context.Context, employee store.Employee) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	employee.ID = m.allocate("employees")
	employee.CreatedAt = now
	employee.UpdatedAt = now
	m.employees[employee.ID] = employee
	return employee.ID, nil
}

func (m *Memory) UpdateEmployee(ctx context.Context, id int64, patch store.EmployeePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	employee, ok := m.employees[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.EmployeeNumber != nil {
		employee.EmployeeNumber = *patch.EmployeeNumber
	}
	if patch.FullName != nil {
		employee.FullName = *patch.FullName
	}
	if patch.DepartmentID != nil {
		employee.DepartmentID = *patch.DepartmentID
	}
	if patch.Position != nil {
		employee.Position = *patch.Position
	}
	if patch.ManagerID != nil {
		employee.ManagerID = *patch.ManagerID
	}
	if patch.UserID != nil {
		employee.UserID = *patch.UserID
	}
	if patch.HireDate != nil {
		employee.HireDate = *patch.HireDate
	}
	if patch.IsActive != nil {
		employee.IsActive = *patch.IsActive
	}
	employee.UpdatedAt = time.Now().UTC()
	m.employees[id] = employee
	return nil
}

func (m *Memory) DeleteEmployee(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *Memory) CountEmployeesByManager(ctx context.Context, managerID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.employees {
		if e.ManagerID != nil && *e.ManagerID == managerID {
			count++
		}
	}
	return count, nil
}

// Criteria

func (m *Memory) ListCriteria(ctx context.Context) ([]store.Criterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	criteria := make([]store.Criterion, 0, len(m.criteria))
	for _, c := range m.criteria {
		criteria = append(criteria, c)
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i].ID < criteria[j].ID })
	return criteria, nil
}

func (m *Memory) ListActiveCriteria(ctx context.Context) ([]store.Criterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var criteria []store.Criterion
	for _, c := range m.criteria {
		if c.IsActive {
			criteria = append(criteria, c)
		}
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i].ID < criteria[j].ID })
	return criteria, nil
}

func (m *Memory) GetCriterion(ctx context.Context, id int64) (store.Criterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	criterion, ok := m.criteria[id]
	if !ok {
		return store.Criterion{}, store.ErrNotFound
	}
	return criterion, nil
}

func (m *Memory) CreateCriterion(ctx context.Context, criterion store.Criterion) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	criterion.ID = m.allocate("criteria")
	criterion.CreatedAt = now
	criterion.UpdatedAt = now
	m.criteria[criterion.ID] = criterion
	return criterion.ID, nil
}

func (m *Memory) UpdateCriterion(ctx context.Context, id int64, patch store.CriterionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	criterion, ok := m.criteria[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		criterion.Name = *patch.Name
	}
	if patch.Description != nil {
		criterion.Description = *patch.Description
	}
	if patch.Weight != nil {
		criterion.Weight = *patch.Weight
	}
	if patch.MaxScore != nil {
		criterion.MaxScore = *patch.MaxScore
	}
	if patch.IsActive != nil {
		criterion.IsActive = *patch.IsActive
	}
	criterion.UpdatedAt = time.Now().UTC()
	m.criteria[id] = criterion
	return nil
}

func (m *Memory) DeleteCriterion(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.criteria[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.criteria, id)
	return nil
}

func (m *Memory) CountDetailsByCriterion(ctx context.Context, criterionID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, d := range m.details {
		if d.CriterionID == criterionID {
			count++
		}
	}
	return count, nil
}

// Periods

func (m *Memory) ListPeriods(ctx context.Context) ([]store.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	periods := make([]store.Period, 0, len(m.periods))
	for _, p := range m.periods {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].ID < periods[j].ID })
	return periods, nil
}

func (m *Memory) GetPeriod(ctx context.Context, id int64) (store.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period, ok := m.periods[id]
	if !ok {
		return store.Period{}, store.ErrNotFound
	}
	return period, nil
}

func (m *Memory) ActivePeriod(ctx context.Context) (store.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.IsActive {
			return p, nil
		}
	}
	return store.Period{}, store.ErrNotFound
}

func (m *Memory) CreatePeriod(ctx context.Context, period store.Period) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	period.ID = m.allocate("periods")
	period.CreatedAt = now
	period.UpdatedAt = now
	m.periods[period.ID] = period
	return period.ID, nil
}

func (m *Memory) UpdatePeriod(ctx context.Context, id int64, patch store.PeriodPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	period, ok := m.periods[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		period.Name = *patch.Name
	}
	if patch.StartDate != nil {
		period.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		period.EndDate = *patch.EndDate
	}
	if patch.Year != nil {
		period.Year = *patch.Year
	}
	if patch.IsActive != nil {
		period.IsActive = *patch.IsActive
	}
	period.UpdatedAt = time.Now().UTC()
	m.periods[id] = period
	return nil
}

func (m *Memory) DeletePeriod(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.periods[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.periods, id)
	return nil
}

func (m *Memory) CountEvaluationsByPeriod(ctx context.Context, periodID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.evaluations {
		if e.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

// Evaluations

func (m *Memory) ListEvaluations(ctx context.Context) ([]store.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evaluations := make([]store.Evaluation, 0, len(m.evaluations))
	for _, e := range m.evaluations {
		evaluations = append(evaluations, e)
	}
	sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].ID < evaluations[j].ID })
	return evaluations, nil
}

func (m *Memory) ListEvaluationsByEvaluator(ctx context.Context, evaluatorID int64) ([]store.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var evaluations []store.Evaluation
	for _, e := range m.evaluations {
		if e.EvaluatorID == evaluatorID {
			evaluations = append(evaluations, e)
		}
	}
	sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].ID < evaluations[j].ID })
	return evaluations, nil
}

func (m *Memory) ListEvaluationsByPeriod(ctx context.Context, periodID int64) ([]store.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var evaluations []store.Evaluation
	for _, e := range m.evaluations {
		if e.PeriodID == periodID {
			evaluations = append(evaluations, e)
		}
	}
	sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].ID < evaluations[j].ID })
	return evaluations, nil
}

func (m *Memory) GetEvaluation(ctx context.Context, id int64) (store.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evaluation, ok := m.evaluations[id]
	if !ok {
		return store.Evaluation{}, store.ErrNotFound
	}
	return evaluation, nil
}

func (m *Memory) EvaluationByEmployeeAndPeriod(ctx context.Context, employeeID, periodID int64) (store.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.evaluations {
		if e.EmployeeID == employeeID && e.PeriodID == periodID {
			return e, nil
		}
	}
	return store.Evaluation{}, store.ErrNotFound
}

func (m *Memory) CreateEvaluation(ctx context.Context, evaluation store.Evaluation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	evaluation.ID = m.allocate("evaluations")
	evaluation.CreatedAt = now
	evaluation.UpdatedAt = now
	m.evaluations[evaluation.ID] = evaluation
	return evaluation.ID, nil
}

func (m *Memory) UpdateEvaluation(ctx context.Context, id int64, patch store.EvaluationPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	evaluation, ok := m.evaluations[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Status != nil {
		evaluation.Status = *patch.Status
	}
	if patch.Comments != nil {
		evaluation.Comments = *patch.Comments
	}
	if patch.TotalScore != nil {
		evaluation.TotalScore = *patch.TotalScore
	}
	if patch.SubmissionDate != nil {
		evaluation.SubmissionDate = *patch.SubmissionDate
	}
	if patch.CompletionDate != nil {
		evaluation.CompletionDate = *patch.CompletionDate
	}
	evaluation.UpdatedAt = time.Now().UTC()
	m.evaluations[id] = evaluation
	return nil
}

func (m *Memory) DeleteEvaluation(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evaluations[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.evaluations, id)
	return nil
}

func (m *Memory) CountEvaluationsInvolving(ctx context.Context, employeeID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.evaluations {
		if e.EmployeeID == employeeID || e.EvaluatorID == employeeID {
			count++
		}
	}
	return count, nil
}

// Evaluation details

func (m *Memory) ListDetailsByEvaluation(ctx context.Context, evaluationID int64) ([]store.EvaluationDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var details []store.EvaluationDetail
	for _, d := range m.details {
		if d.EvaluationID == evaluationID {
			details = append(details, d)
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

func (m *Memory) GetDetail(ctx context.Context, id int64) (store.EvaluationDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	detail, ok := m.details[id]
	if !ok {
		return store.EvaluationDetail{}, store.ErrNotFound
	}
	return detail, nil
}

func (m *Memory) CreateDetail(ctx context.Context, detail store.EvaluationDetail) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	detail.ID = m.allocate("details")
	detail.CreatedAt = now
	detail.UpdatedAt = now
	m.details[detail.ID] = detail
	return detail.ID, nil
}

func (m *Memory) UpdateDetail(ctx context.Context, id int64, patch store.EvaluationDetailPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.details[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Score != nil {
		detail.Score = *patch.Score
	}
	if patch.Comments != nil {
		detail.Comments = *patch.Comments
	}
	detail.UpdatedAt = time.Now().UTC()
	m.details[id] = detail
	return nil
}

func (m *Memory) DeleteDetailsByEvaluation(ctx context.Context, evaluationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.details {
		if d.EvaluationID == evaluationID {
			delete(m.details, id)
		}
	}
	return nil
}
