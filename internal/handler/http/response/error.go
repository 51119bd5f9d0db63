package response

import (
	"errors"
	"net/http"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/regularization"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrManagerNotFound):
		BadRequest(w, "Manager not found", nil)
	case errors.Is(err, employee.ErrNotAManager):
		BadRequest(w, "Referenced employee is not a manager", nil)
	case errors.Is(err, employee.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, employee.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrDayAlreadyFinalized):
		Conflict(w, "Attendance for today is already finalized")
	case errors.Is(err, attendance.ErrLocationNotVerified):
		Forbidden(w, "Location could not be verified")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open check-in to close")
	case errors.Is(err, attendance.ErrInvalidTimeRange):
		BadRequest(w, "Check-out must be after check-in", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Regularization domain errors
	case errors.Is(err, regularization.ErrInvalidReason):
		BadRequest(w, "Reason is required and limited to 200 characters", nil)
	case errors.Is(err, regularization.ErrInvalidTimeRange):
		BadRequest(w, "Proposed check-out must be after proposed check-in", nil)
	case errors.Is(err, regularization.ErrInsufficientHours):
		BadRequest(w, "Proposed times do not cover the minimum daily duration", nil)
	case errors.Is(err, regularization.ErrDuplicateRequest):
		Conflict(w, "An active request already exists for that date")
	case errors.Is(err, regularization.ErrQuotaExceeded):
		Conflict(w, "Monthly regularization quota exceeded")
	case errors.Is(err, regularization.ErrRequestNotFound):
		NotFound(w, "Regularization request not found")
	case errors.Is(err, regularization.ErrAlreadyProcessed):
		Conflict(w, "Request already processed")
	case errors.Is(err, regularization.ErrNotTeamManager):
		Forbidden(w, "Only the employee's manager can decide this request")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
