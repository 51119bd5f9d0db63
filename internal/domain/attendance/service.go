package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations.
// The acting employee is taken from the request context claims.
type AttendanceService interface {
	// CheckIn processes an employee check-in against the late-arrival policy
	CheckIn(ctx context.Context, req CheckInRequest) (DayResponse, error)

	// CheckOut closes the open day and classifies it by worked duration
	CheckOut(ctx context.Context, req CheckOutRequest) (DayResponse, error)

	// GetMyAttendance retrieves attendance days for the authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListDaysResponse, error)

	// WeeklySummary reports the current week's counters and hours deficit
	WeeklySummary(ctx context.Context) (WeeklySummaryResponse, error)
}
