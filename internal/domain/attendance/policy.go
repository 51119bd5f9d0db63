package attendance

import (
	"time"
)

// Policy holds the attendance rule parameters. All evaluations are pure:
// they take timestamps and counters in, return decisions out, and never
// read the wall clock themselves.
type Policy struct {
	LateCutoff                 time.Duration // time of day, as offset from local midnight
	MinimumDailyDuration       time.Duration
	WeeklyExpected             time.Duration
	MonthlyRegularizationLimit int
	NewHireGraceDays           int
}

// DefaultPolicy returns the handbook defaults: 13:00 late cutoff, 3h45m
// daily minimum, 40h weekly expectation, 5 regularizations per month,
// 30-day new-hire grace.
func DefaultPolicy() Policy {
	return Policy{
		LateCutoff:                 13 * time.Hour,
		MinimumDailyDuration:       3*time.Hour + 45*time.Minute,
		WeeklyExpected:             40 * time.Hour,
		MonthlyRegularizationLimit: 5,
		NewHireGraceDays:           30,
	}
}

// IsLateArrival reports whether at falls at or after the late cutoff on
// its own calendar day. The boundary is inclusive: arriving exactly at
// the cutoff is late.
func (p Policy) IsLateArrival(at time.Time) bool {
	midnight := DayOf(at)
	return at.Sub(midnight) >= p.LateCutoff
}

// CheckInDecision is the outcome of evaluating a check-in attempt.
type CheckInDecision struct {
	Accepted     bool
	Status       Status
	AbsentReason AbsentReason // set when rejected
	LateArrival  bool         // the accepted check-in used the weekly late allowance
	CountLate    bool         // the weekly late counter must be incremented
}

// EvaluateCheckIn decides whether a check-in at the given time opens the
// day. lateCountThisWeek is the employee's late-after-cutoff count for the
// week containing at. The first late arrival of a week is tolerated and
// consumes the allowance; the second and any later one is rejected and the
// day is immediately terminal as Absent(LatePolicyViolation) with the
// counter left unchanged.
func (p Policy) EvaluateCheckIn(lateCountThisWeek int, at time.Time) CheckInDecision {
	if !p.IsLateArrival(at) {
		return CheckInDecision{Accepted: true, Status: StatusPresent}
	}

	if lateCountThisWeek >= 1 {
		return CheckInDecision{
			Accepted:     false,
			Status:       StatusAbsent,
			AbsentReason: AbsentLatePolicyViolation,
		}
	}

	return CheckInDecision{
		Accepted:    true,
		Status:      StatusPresent,
		LateArrival: true,
		CountLate:   true,
	}
}

// CheckOutDecision is the outcome of evaluating a check-out.
type CheckOutDecision struct {
	Status       Status
	AbsentReason AbsentReason
	Worked       time.Duration
}

// EvaluateCheckOut classifies a finished day. checkIn must precede at,
// otherwise ErrInvalidTimeRange. Working exactly the minimum duration
// counts as Present (boundary inclusive); anything shorter finalizes the
// day as Absent(InsufficientHours) even though the check-in was accepted.
func (p Policy) EvaluateCheckOut(checkIn, at time.Time) (CheckOutDecision, error) {
	worked := at.Sub(checkIn)
	if worked <= 0 {
		return CheckOutDecision{}, ErrInvalidTimeRange
	}

	if worked < p.MinimumDailyDuration {
		return CheckOutDecision{
			Status:       StatusAbsent,
			AbsentReason: AbsentInsufficientHours,
			Worked:       worked,
		}, nil
	}

	return CheckOutDecision{Status: StatusPresent, Worked: worked}, nil
}

// WeeklyDeficit returns how far worked falls short of the weekly
// expectation, never negative. The deficit is informational: it is
// surfaced for manual compensation within the week and never converted
// into an absence automatically.
func (p Policy) WeeklyDeficit(worked time.Duration) time.Duration {
	if worked >= p.WeeklyExpected {
		return 0
	}
	return p.WeeklyExpected - worked
}
