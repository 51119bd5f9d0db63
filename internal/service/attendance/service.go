package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AttendanceServiceImpl struct {
	db     *database.DB
	policy attendance.Policy
	attendance.AttendanceRepository
	attendance.WeeklyCounterRepository

	// now is the injected clock; evaluations never read the wall clock
	// directly so tests can pin time.
	now func() time.Time
}

func NewAttendanceService(
	db *database.DB,
	policy attendance.Policy,
	attendanceRepo attendance.AttendanceRepository,
	counterRepo attendance.WeeklyCounterRepository,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:                      db,
		policy:                  policy,
		AttendanceRepository:    attendanceRepo,
		WeeklyCounterRepository: counterRepo,
		now:                     time.Now,
	}
}

// WithClock replaces the time source. Used by tests and the simulator
// tooling only.
func (a *AttendanceServiceImpl) WithClock(now func() time.Time) *AttendanceServiceImpl {
	a.now = now
	return a
}

func employeeIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	return employeeID, nil
}

// inTx runs fn inside a database transaction. A nil pool (repository
// fakes in tests) runs fn directly; the fakes are already atomic.
func (a *AttendanceServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// eventTime resolves the effective timestamp: an explicit RFC3339 value
// from the request when present, the injected clock otherwise.
func (a *AttendanceServiceImpl) eventTime(at *string) (time.Time, error) {
	if at == nil {
		return a.now(), nil
	}
	ts, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse event time: %w", err)
	}
	return ts, nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	employeeID, err := employeeIDFromClaims(ctx)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	// The geofence verdict comes from the client's verification step; the
	// engine only gates on the boolean.
	if !req.LocationVerified {
		return attendance.DayResponse{}, attendance.ErrLocationNotVerified
	}

	at, err := a.eventTime(req.At)
	if err != nil {
		return attendance.DayResponse{}, err
	}
	date := attendance.DayOf(at)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to check for existing day: %w", err)
	}
	if existing != nil {
		if existing.Open() {
			return attendance.DayResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.DayResponse{}, attendance.ErrDayAlreadyFinalized
	}

	weekStart := attendance.WeekStart(at)
	counters, err := a.WeeklyCounterRepository.Get(ctx, employeeID, weekStart)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to get weekly counters: %w", err)
	}

	decision := a.policy.EvaluateCheckIn(counters.LateArrivalCount, at)

	day := attendance.AttendanceDay{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       date,
		Status:     decision.Status,
	}

	if !decision.Accepted {
		// Rejected check-in: the day is terminal immediately, no open
		// session, counters untouched.
		zero := 0
		day.WorkedMinutes = &zero
		day.AbsentReason = decision.AbsentReason
		day.FinalizedAt = &at

		created, err := a.AttendanceRepository.Create(ctx, day)
		if err != nil {
			return attendance.DayResponse{}, fmt.Errorf("failed to record rejected check-in: %w", err)
		}
		return mapDayToResponse(created), nil
	}

	day.CheckIn = &at
	day.LateArrival = decision.LateArrival

	var created attendance.AttendanceDay
	err = a.inTx(ctx, func(txCtx context.Context) error {
		created, err = a.AttendanceRepository.Create(txCtx, day)
		if err != nil {
			return fmt.Errorf("failed to create attendance day: %w", err)
		}

		if decision.CountLate {
			if err := a.WeeklyCounterRepository.AddLateArrival(txCtx, employeeID, weekStart); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return attendance.DayResponse{}, err
	}

	return mapDayToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	employeeID, err := employeeIDFromClaims(ctx)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	at, err := a.eventTime(req.At)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	day, err := a.AttendanceRepository.GetOpenDay(ctx, employeeID)
	if err != nil {
		return attendance.DayResponse{}, err
	}
	if day.CheckIn == nil {
		return attendance.DayResponse{}, attendance.ErrNotCheckedIn
	}

	decision, err := a.policy.EvaluateCheckOut(*day.CheckIn, at)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	workedMinutes := int(decision.Worked.Minutes())
	day.CheckOut = &at
	day.WorkedMinutes = &workedMinutes
	day.Status = decision.Status
	day.AbsentReason = decision.AbsentReason
	day.FinalizedAt = &at

	weekStart := attendance.WeekStart(day.Date)
	err = a.inTx(ctx, func(txCtx context.Context) error {
		if err := a.AttendanceRepository.Update(txCtx, day); err != nil {
			return err
		}
		return a.WeeklyCounterRepository.AddWorkedMinutes(txCtx, employeeID, weekStart, workedMinutes)
	})
	if err != nil {
		return attendance.DayResponse{}, err
	}

	return mapDayToResponse(day), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListDaysResponse, error) {
	employeeID, err := employeeIDFromClaims(ctx)
	if err != nil {
		return attendance.ListDaysResponse{}, err
	}

	filter.Normalize()

	days, total, err := a.AttendanceRepository.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return attendance.ListDaysResponse{}, fmt.Errorf("failed to list attendance days: %w", err)
	}

	responses := make([]attendance.DayResponse, 0, len(days))
	for _, day := range days {
		responses = append(responses, mapDayToResponse(day))
	}

	return attendance.ListDaysResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Days:       responses,
	}, nil
}

// WeeklySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) WeeklySummary(ctx context.Context) (attendance.WeeklySummaryResponse, error) {
	employeeID, err := employeeIDFromClaims(ctx)
	if err != nil {
		return attendance.WeeklySummaryResponse{}, err
	}

	weekStart := attendance.WeekStart(a.now())
	counters, err := a.WeeklyCounterRepository.Get(ctx, employeeID, weekStart)
	if err != nil {
		return attendance.WeeklySummaryResponse{}, fmt.Errorf("failed to get weekly counters: %w", err)
	}

	worked := counters.Worked()
	return attendance.WeeklySummaryResponse{
		WeekStart:        weekStart.Format("2006-01-02"),
		WorkedHours:      worked.Hours(),
		ExpectedHours:    a.policy.WeeklyExpected.Hours(),
		DeficitHours:     a.policy.WeeklyDeficit(worked).Hours(),
		LateArrivalCount: counters.LateArrivalCount,
	}, nil
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// mapDayToResponse converts an AttendanceDay entity to DayResponse
func mapDayToResponse(day attendance.AttendanceDay) attendance.DayResponse {
	var workedHours *float64
	if day.WorkedMinutes != nil {
		hours := float64(*day.WorkedMinutes) / 60.0
		workedHours = &hours
	}

	var reason *string
	if day.AbsentReason != "" {
		r := string(day.AbsentReason)
		reason = &r
	}

	return attendance.DayResponse{
		ID:           day.ID,
		EmployeeID:   day.EmployeeID,
		EmployeeName: day.EmployeeName,
		Date:         day.Date.Format("2006-01-02"),
		CheckInTime:  timePtrToString(day.CheckIn),
		CheckOutTime: timePtrToString(day.CheckOut),
		WorkedHours:  workedHours,
		Status:       string(day.Status),
		AbsentReason: reason,
		LateArrival:  day.LateArrival,
		Finalized:    !day.Open(),
	}
}
