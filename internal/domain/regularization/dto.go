package regularization

import (
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/validator"
)

// ========================================
// REGULARIZATION DTOs
// ========================================

type SubmitRequest struct {
	TargetDate       string `json:"target_date"`        // YYYY-MM-DD
	ProposedCheckIn  string `json:"proposed_check_in"`  // HH:MM
	ProposedCheckOut string `json:"proposed_check_out"` // HH:MM
	Reason           string `json:"reason"`
}

// Validate covers shape only; the business rules (time ordering, minimum
// duration, duplicates, quota) live in the service so each failure maps
// to its own sentinel error.
func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.TargetDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "target_date",
			Message: "target_date must be YYYY-MM-DD",
		})
	}

	if _, ok := validator.IsValidClock(r.ProposedCheckIn); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "proposed_check_in",
			Message: "proposed_check_in must be HH:MM",
		})
	}

	if _, ok := validator.IsValidClock(r.ProposedCheckOut); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "proposed_check_out",
			Message: "proposed_check_out must be HH:MM",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequest struct {
	Comment *string `json:"comment,omitempty"`
}

type RequestResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     *string `json:"employee_name,omitempty"`
	TargetDate       string  `json:"target_date"`
	ProposedCheckIn  string  `json:"proposed_check_in"`
	ProposedCheckOut string  `json:"proposed_check_out"`
	WorkDuration     string  `json:"work_duration"` // e.g. "9h0m"
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	SubmittedAt      string  `json:"submitted_at"`
	RejectionComment *string `json:"rejection_comment,omitempty"`
}

type ListFilter struct {
	Status *string
	Page   int
	Limit  int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Requests   []RequestResponse `json:"requests"`
}

// QuotaResponse reports the employee's standing against the monthly limit.
type QuotaResponse struct {
	Month         string `json:"month"` // YYYY-MM
	ApprovedCount int    `json:"approved_count"`
	Limit         int    `json:"limit"`
	NewHireGrace  bool   `json:"new_hire_grace"`
}
