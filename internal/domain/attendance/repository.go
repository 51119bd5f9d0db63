package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance days.
type AttendanceRepository interface {
	// Create creates a new attendance day
	Create(ctx context.Context, day AttendanceDay) (AttendanceDay, error)

	// GetByEmployeeAndDate retrieves the attendance day for an employee on
	// a specific date. Used to prevent double check-in. Returns nil when
	// no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceDay, error)

	// GetOpenDay retrieves the employee's open (checked-in, not finalized)
	// day, if any
	GetOpenDay(ctx context.Context, employeeID string) (AttendanceDay, error)

	// Update updates an existing attendance day
	Update(ctx context.Context, day AttendanceDay) error

	// ListByEmployee retrieves attendance days with filters and pagination
	ListByEmployee(ctx context.Context, employeeID string, filter MyAttendanceFilter) ([]AttendanceDay, int64, error)

	// ListOpenBefore retrieves all days still open whose date is before
	// the given day. Used by the end-of-day job.
	ListOpenBefore(ctx context.Context, date time.Time) ([]AttendanceDay, error)
}

// WeeklyCounterRepository holds exactly one counters record per
// (employee, week). Increments are atomic upserts so concurrent
// operations against the same employee never lose an update.
type WeeklyCounterRepository interface {
	// Get returns the counters for the week, a zero record if none exists yet
	Get(ctx context.Context, employeeID string, weekStart time.Time) (WeeklyCounters, error)

	// AddLateArrival increments the late-after-cutoff count by one
	AddLateArrival(ctx context.Context, employeeID string, weekStart time.Time) error

	// AddWorkedMinutes adds worked time to the weekly total
	AddWorkedMinutes(ctx context.Context, employeeID string, weekStart time.Time, minutes int) error

	// Reset zeroes the counters for the week. Idempotent: resetting an
	// already-reset or absent week is a no-op.
	Reset(ctx context.Context, employeeID string, weekStart time.Time) error
}
