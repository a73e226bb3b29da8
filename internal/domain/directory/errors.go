package directory

import "errors"

var (
	ErrUserInUse               = errors.New("user is linked to an employee record")
	ErrEmployeeInUse           = errors.New("employee is referenced as a manager or by evaluations")
	ErrDepartmentInUse         = errors.New("department still has employees")
	ErrDuplicateUsername       = errors.New("username is already taken")
	ErrDuplicateEmail          = errors.New("email is already taken")
	ErrDuplicateEmployeeNumber = errors.New("employee number is already taken")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrSelfManager             = errors.New("an employee cannot be their own manager")
)
