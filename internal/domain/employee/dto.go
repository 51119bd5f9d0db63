package employee

import (
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/validator"
)

// ========================================
// EMPLOYEE DTOs
// ========================================

type CreateEmployeeRequest struct {
	FullName  string  `json:"full_name"`
	Code      string  `json:"code"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	HireDate  string  `json:"hire_date"` // YYYY-MM-DD
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	}

	if !validator.IsValidEmployeeCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must match NNNN-NNNN",
		})
	}

	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if !validator.IsInSlice(r.Role, []string{string(RoleISD), string(RoleManager), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of isd, manager, admin",
		})
	}

	if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "hire_date",
			Message: "hire_date must be YYYY-MM-DD",
		})
	}

	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Code        string  `json:"code"`
	Role        string  `json:"role"`
	HireDate    string  `json:"hire_date"`
	ManagerID   *string `json:"manager_id,omitempty"`
	ManagerName *string `json:"manager_name,omitempty"`
	Status      string  `json:"status"`
}
