package attendance

import (
	"time"
)

type Status string

const (
	StatusNotMarked Status = "not_marked"
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
)

// AbsentReason tags every absence for auditability. A bare "absent" with
// no reason is never written.
type AbsentReason string

const (
	AbsentLatePolicyViolation AbsentReason = "late_policy_violation"
	AbsentInsufficientHours   AbsentReason = "insufficient_hours"
	AbsentNoCheckIn           AbsentReason = "no_check_in"
)

// AttendanceDay is one employee workday. A day is open between check-in
// and check-out; FinalizedAt is set when the status is locked, either by
// check-out, by a rejected check-in, or by the end-of-day job. Terminal
// days never reopen.
type AttendanceDay struct {
	ID            string
	EmployeeID    string
	Date          time.Time // calendar day in the employee's local reference
	CheckIn       *time.Time
	CheckOut      *time.Time
	WorkedMinutes *int
	Status        Status
	AbsentReason  AbsentReason // empty unless Status is absent
	LateArrival   bool         // first late-after-cutoff occurrence this week
	FinalizedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

// Open reports whether the day still accepts a check-out.
func (d *AttendanceDay) Open() bool {
	return d.FinalizedAt == nil
}

// WeeklyCounters is the per-employee running state for one calendar week:
// how many times the employee arrived at or after the late cutoff and how
// many minutes they have worked. A fresh zero record implicitly exists for
// every (employee, week) until something increments it.
type WeeklyCounters struct {
	EmployeeID       string
	WeekStart        time.Time // Monday 00:00, see WeekStart
	LateArrivalCount int
	WorkedMinutes    int
	UpdatedAt        time.Time
}

// Worked returns the accumulated work time for the week.
func (w WeeklyCounters) Worked() time.Duration {
	return time.Duration(w.WorkedMinutes) * time.Minute
}

// WeekStart returns Monday 00:00 of the week containing t, in t's
// location. The Monday convention is the project-wide week boundary for
// the late-arrival allowance and the weekly hours deficit.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// DayOf truncates t to its calendar day in t's location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
