package regularization

import (
	"context"
	"time"
)

// RequestRepository defines data access methods for regularization
// requests.
type RequestRepository interface {
	// Create inserts a new pending request
	Create(ctx context.Context, req Request) (Request, error)

	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id string) (Request, error)

	// HasActiveForDate reports whether a pending or approved request
	// already exists for the employee and target date
	HasActiveForDate(ctx context.Context, employeeID string, targetDate time.Time) (bool, error)

	// CountApprovedInMonth counts requests approved with a submission date
	// inside the calendar month containing ref
	CountApprovedInMonth(ctx context.Context, employeeID string, ref time.Time) (int, error)

	// ListByEmployee retrieves an employee's requests, newest first
	ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Request, int64, error)

	// ListPendingByManager retrieves pending requests from the manager's
	// team members
	ListPendingByManager(ctx context.Context, managerID string, filter ListFilter) ([]Request, int64, error)

	// UpdateStatus moves a request to a terminal state, recording the
	// approver and optional rejection comment
	UpdateStatus(ctx context.Context, id string, status RequestStatus, approvedBy string, approvedAt time.Time, rejectionComment *string) error
}
