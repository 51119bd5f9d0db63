package auth

import (
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/validator"
)

// ========================================
// AUTH DTOs
// ========================================

type LoginRequest struct {
	EmployeeCode string `json:"employee_code"`
	Password     string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must match NNNN-NNNN",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"-"` // delivered as an http-only cookie
	RefreshTokenExpiresIn int64  `json:"-"`
	Role                  string `json:"role"`
	EmployeeID            string `json:"employee_id"`
}
