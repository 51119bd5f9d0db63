package employee

import (
	"context"
)

// EmployeeRepository defines data access methods for employee records.
type EmployeeRepository interface {
	// Create creates a new employee record
	Create(ctx context.Context, emp Employee) (Employee, error)

	// GetByID retrieves an employee by ID
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByCode retrieves an employee by their login code
	GetByCode(ctx context.Context, code string) (Employee, error)

	// ListByManager retrieves the active team members reporting to a manager
	ListByManager(ctx context.Context, managerID string) ([]Employee, error)

	// ListActive retrieves all active employees, used by the nightly jobs
	ListActive(ctx context.Context) ([]Employee, error)
}
