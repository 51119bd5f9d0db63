package employee

import (
	"context"
)

// EmployeeService covers admin onboarding and team lookups.
type EmployeeService interface {
	// Create onboards a new employee
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// ListTeam retrieves the active employees reporting to the caller
	ListTeam(ctx context.Context) ([]EmployeeResponse, error)
}
