package store

import "time"

// Role names form a fixed vocabulary seeded at startup.
const (
	RoleAdministrator     = "Administrator"
	RoleHRManager         = "HR Manager"
	RoleDepartmentManager = "Department Manager"
	RoleEmployee          = "Employee"
)

// Evaluation statuses. The ids match the seeded status reference rows.
type EvaluationStatus int64

const (
	StatusDraft     EvaluationStatus = 1
	StatusSubmitted EvaluationStatus = 2
	StatusInReview  EvaluationStatus = 3
	StatusCompleted EvaluationStatus = 4
	StatusRejected  EvaluationStatus = 5
)

var statusNames = map[EvaluationStatus]string{
	StatusDraft:     "Draft",
	StatusSubmitted: "Submitted",
	StatusInReview:  "In Review",
	StatusCompleted: "Completed",
	StatusRejected:  "Rejected",
}

func (s EvaluationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s EvaluationStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	ManagerID   *int64    `json:"managerId,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Employee struct {
	ID             int64      `json:"id"`
	EmployeeNumber string     `json:"employeeNumber"`
	FullName       string     `json:"fullName"`
	DepartmentID   int64      `json:"departmentId"`
	Position       string     `json:"position"`
	ManagerID      *int64     `json:"managerId,omitempty"`
	UserID         *int64     `json:"userId,omitempty"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Criterion struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	MaxScore    float64   `json:"maxScore"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Period struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Year      int       `json:"year"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Evaluation struct {
	ID             int64            `json:"id"`
	EmployeeID     int64            `json:"employeeId"`
	EvaluatorID    int64            `json:"evaluatorId"`
	PeriodID       int64            `json:"periodId"`
	Status         EvaluationStatus `json:"status"`
	Comments       string           `json:"comments"`
	TotalScore     *float64         `json:"totalScore,omitempty"`
	SubmissionDate *time.Time       `json:"submissionDate,omitempty"`
	CompletionDate *time.Time       `json:"completionDate,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type EvaluationDetail struct {
	ID           int64     `json:"id"`
	EvaluationID int64     `json:"evaluationId"`
	CriterionID  int64     `json:"criterionId"`
	Score        float64   `json:"score"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Patch structs carry partial updates; nil fields are left untouched.

type UserPatch struct {
	Username     *string
	PasswordHash *string
	Email        *string
	FullName     *string
	IsActive     *bool
}

type DepartmentPatch struct {
	Name        *string
	Code        *string
	ManagerID   **int64
	Description *string
}

type EmployeePatch struct {
	EmployeeNumber *string
	FullName       *string
	DepartmentID   *int64
	Position       *string
	ManagerID      **int64
	UserID         **int64
	HireDate       **time.Time
	IsActive       *bool
}

type CriterionPatch struct {
	Name        *string
	Description *string
	Weight      *float64
	MaxScore    *float64
	IsActive    *bool
}

type PeriodPatch struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Year      *int
	IsActive  *bool
}

type EvaluationPatch struct {
	Status         *EvaluationStatus
	Comments       *string
	TotalScore     **float64
	SubmissionDate **time.Time
	CompletionDate **time.Time
}

type EvaluationDetailPatch struct {
	Score    *float64
	Comments *string
}
