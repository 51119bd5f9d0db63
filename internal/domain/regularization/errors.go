package regularization

import "errors"

// Regularization domain errors
var (
	// Submission errors, in validation order
	ErrInvalidReason     = errors.New("reason is required and must be at most 200 characters")
	ErrInvalidTimeRange  = errors.New("proposed check-out must be after proposed check-in")
	ErrInsufficientHours = errors.New("proposed work duration is below the daily minimum")
	ErrDuplicateRequest  = errors.New("a request for this date already exists")
	ErrQuotaExceeded     = errors.New("monthly regularization quota exhausted")

	// Workflow errors
	ErrRequestNotFound  = errors.New("regularization request not found")
	ErrAlreadyProcessed = errors.New("regularization request has already been approved or rejected")
	ErrNotTeamManager   = errors.New("only the employee's manager may decide this request")
)
