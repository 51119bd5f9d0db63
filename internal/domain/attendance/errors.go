package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrDayAlreadyFinalized = errors.New("attendance for this day is already finalized")
	ErrLocationNotVerified = errors.New("location verification failed")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")

	// Check-out errors
	ErrInvalidTimeRange = errors.New("check-out time must be after check-in time")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
