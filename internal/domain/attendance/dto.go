package attendance

import (
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// CheckInRequest carries an optional explicit timestamp (RFC3339) so
// offline clients can sync a capture taken earlier; when omitted the
// server clock is used. LocationVerified is the geofence gate decided by
// the mobile client's verification step - the engine only trusts the
// boolean.
type CheckInRequest struct {
	At               *string `json:"at,omitempty"`
	LocationVerified bool    `json:"location_verified"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.At != nil {
		if _, ok := validator.IsValidDateTime(*r.At); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "at",
				Message: "at must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	At *string `json:"at,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.At != nil {
		if _, ok := validator.IsValidDateTime(*r.At); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "at",
				Message: "at must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DayResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	Date         string   `json:"date"`
	CheckInTime  *string  `json:"check_in_time,omitempty"`
	CheckOutTime *string  `json:"check_out_time,omitempty"`
	WorkedHours  *float64 `json:"worked_hours,omitempty"`
	Status       string   `json:"status"`
	AbsentReason *string  `json:"absent_reason,omitempty"`
	LateArrival  bool     `json:"late_arrival"`
	Finalized    bool     `json:"finalized"`
}

type MyAttendanceFilter struct {
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

func (f *MyAttendanceFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListDaysResponse struct {
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Days       []DayResponse `json:"days"`
}

// WeeklySummaryResponse surfaces the running counters for the current
// week: worked hours, how far they fall short of the weekly expectation,
// and whether the one-per-week late allowance is spent.
type WeeklySummaryResponse struct {
	WeekStart        string  `json:"week_start"`
	WorkedHours      float64 `json:"worked_hours"`
	ExpectedHours    float64 `json:"expected_hours"`
	DeficitHours     float64 `json:"deficit_hours"`
	LateArrivalCount int     `json:"late_arrival_count"`
}
