package pgstore

import (
	"context"

	"appraisal/internal/store"
)

const departmentColumns = "id, name, code, manager_id, description, created_at, updated_at"

func scanDepartment(row interface{ Scan(...any) error }) (store.Department, error) {
	var d store.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.ManagerID, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	return d, translate(err)
}

func (p *PG) ListDepartments(ctx context.Context) ([]store.Department, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT `+departmentColumns+`
    FROM departments
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []store.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}

func (p *PG) GetDepartment(ctx context.Context, id int64) (store.Department, error) {
	return scanDepartment(p.DB.QueryRow(ctx, `
    SELECT `+departmentColumns+`
    FROM departments
    WHERE id = $1
  `, id))
}

func (p *PG) CreateDepartment(ctx context.Context, department store.Department) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO departments (name, code, manager_id, description)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, department.Name, department.Code, department.ManagerID, department.Description).Scan(&id)
	return id, err
}

func (p *PG) UpdateDepartment(ctx context.Context, id int64, patch store.DepartmentPatch) error {
	department, err := p.GetDepartment(ctx, id)
	if err != nil {
		return err
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
	tag, err := p.DB.Exec(ctx, `
    UPDATE departments
    SET name = $2, code = $3, manager_id = $4, description = $5, updated_at = now()
    WHERE id = $1
  `, id, department.Name, department.Code, department.ManagerID, department.Description)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteDepartment(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) CountEmployeesByDepartment(ctx context.Context, departmentID int64) (int, error) {
	return p.count(ctx, `SELECT COUNT(1) FROM employees WHERE department_id = $1`, departmentID)
}

const employeeColumns = "id, employee_number, full_name, department_id, position, manager_id, user_id, hire_date, is_active, created_at, updated_at"

func scanEmployee(row interface{ Scan(...any) error }) (store.Employee, error) {
	var e store.Employee
	err := row.Scan(&e.ID, &e.EmployeeNumber, &e.FullName, &e.DepartmentID, &e.Position,
		&e.ManagerID, &e.UserID, &e.HireDate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, translate(err)
}

func (p *PG) listEmployees(ctx context.Context, query string, args ...any) ([]store.Employee, error) {
	rows, err := p.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []store.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (p *PG) ListEmployees(ctx context.Context) ([]store.Employee, error) {
	return p.listEmployees(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY id
  `)
}

func (p *PG) ListEmployeesByDepartment(ctx context.Context, departmentID int64) ([]store.Employee, error) {
	return p.listEmployees(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE department_id = $1
    ORDER BY id
  `, departmentID)
}

func (p *PG) GetEmployee(ctx context.Context, id int64) (store.Employee, error) {
	return scanEmployee(p.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, id))
}

func (p *PG) GetEmployeeByUserID(ctx context.Context, userID int64) (store.Employee, error) {
	return scanEmployee(p.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE user_id = $1
  `, userID))
}

func (p *PG) GetEmployeeByNumber(ctx context.Context, number string) (store.Employee, error) {
	return scanEmployee(p.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE lower(employee_number) = lower($1)
  `, number))
}

func (p *PG) CreateEmployee(ctx context.Context, employee store.Employee) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_number, full_name, department_id, position, manager_id, user_id, hire_date, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, employee.EmployeeNumber, employee.FullName, employee.DepartmentID, employee.Position,
		employee.ManagerID, employee.UserID, employee.HireDate, employee.IsActive).Scan(&id)
	return id, err
}

func (p *PG) UpdateEmployee(ctx context.Context, id int64, patch store.EmployeePatch) error {
	employee, err := p.GetEmployee(ctx, id)
	if err != nil {
		return err
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
	tag, err := p.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $2, full_name = $3, department_id = $4, position = $5,
        manager_id = $6, user_id = $7, hire_date = $8, is_active = $9, updated_at = now()
    WHERE id = $1
  `, id, employee.EmployeeNumber, employee.FullName, employee.DepartmentID, employee.Position,
		employee.ManagerID, employee.UserID, employee.HireDate, employee.IsActive)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteEmployee(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) CountEmployeesByManager(ctx context.Context, managerID int64) (int, error) {
	return p.count(ctx, `SELECT COUNT(1) FROM employees WHERE manager_id = $1`, managerID)
}
