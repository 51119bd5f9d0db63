package employee

import "time"

type Role string

const (
	RoleISD     Role = "isd"     // In-Shop Demonstrator - front-line field employee
	RoleManager Role = "manager" // Can approve regularization requests for their team
	RoleAdmin   Role = "admin"   // Onboards employees and manages policy
)

type EmploymentStatus string

const (
	StatusActive   EmploymentStatus = "active"
	StatusInactive EmploymentStatus = "inactive"
)

type Employee struct {
	ID           string
	FullName     string
	Code         string // issued as NNNN-NNNN, used for login
	PasswordHash *string
	Role         Role
	HireDate     time.Time
	ManagerID    *string
	Status       EmploymentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	ManagerName *string
}

// IsManager checks if the employee can approve team requests
func (e *Employee) IsManager() bool {
	return e.Role == RoleManager || e.Role == RoleAdmin
}

// IsAdmin checks if the employee can manage employees and policy
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// IsNewHire reports whether the employee is still inside the
// regularization grace period of graceDays after their hire date.
func (e *Employee) IsNewHire(now time.Time, graceDays int) bool {
	return !now.After(e.HireDate.AddDate(0, 0, graceDays))
}

// ManagedBy reports whether approverID is this employee's manager.
func (e *Employee) ManagedBy(approverID string) bool {
	return e.ManagerID != nil && *e.ManagerID == approverID
}
