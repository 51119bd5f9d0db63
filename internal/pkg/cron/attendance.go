package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/google/uuid"
)

// AttendanceJobs closes out each calendar day: open days that never got
// a check-out are finalized as absent, and employees without any record
// get a no-check-in absence written for the day that passed.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	counterRepo    attendance.WeeklyCounterRepository
	employeeRepo   employee.EmployeeRepository

	now func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	counterRepo attendance.WeeklyCounterRepository,
	employeeRepo employee.EmployeeRepository,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		counterRepo:    counterRepo,
		employeeRepo:   employeeRepo,
		now:            time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (j *AttendanceJobs) WithClock(now func() time.Time) *AttendanceJobs {
	j.now = now
	return j
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_open_days", 1*time.Hour, j.CloseOpenDays)
	scheduler.AddJob("mark_no_check_in", 1*time.Hour, j.MarkNoCheckIn)
	scheduler.AddJob("prune_weekly_counters", 1*time.Hour, j.PruneWeeklyCounters)
}

// CloseOpenDays finalizes every day that is still open past its calendar
// date. A day without a check-out earns no credited hours: the employee
// never completed the minimum duration, so the day closes as absent.
func (j *AttendanceJobs) CloseOpenDays(ctx context.Context) error {
	now := j.now()
	// Only run in the first hour after midnight
	if now.Hour() != 0 {
		return nil
	}

	today := attendance.DayOf(now)
	openDays, err := j.attendanceRepo.ListOpenBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list open days: %w", err)
	}
	if len(openDays) == 0 {
		return nil
	}

	closed := 0
	for _, day := range openDays {
		zero := 0
		day.WorkedMinutes = &zero
		day.Status = attendance.StatusAbsent
		day.AbsentReason = attendance.AbsentInsufficientHours
		day.FinalizedAt = &now

		if err := j.attendanceRepo.Update(ctx, day); err != nil {
			slog.Error("Cron: failed to close open day", "day_id", day.ID, "error", err)
			continue
		}
		closed++
	}

	slog.Info("Cron: closed open attendance days", "count", closed)
	return nil
}

// MarkNoCheckIn writes a terminal absence for every active employee who
// produced no attendance record at all on the previous day.
func (j *AttendanceJobs) MarkNoCheckIn(ctx context.Context) error {
	now := j.now()
	if now.Hour() != 0 {
		return nil
	}

	yesterday := attendance.DayOf(now).AddDate(0, 0, -1)

	employees, err := j.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	marked := 0
	for _, emp := range employees {
		existing, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, yesterday)
		if err != nil {
			slog.Error("Cron: failed to check attendance", "employee_id", emp.ID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		zero := 0
		day := attendance.AttendanceDay{
			ID:            uuid.NewString(),
			EmployeeID:    emp.ID,
			Date:          yesterday,
			WorkedMinutes: &zero,
			Status:        attendance.StatusAbsent,
			AbsentReason:  attendance.AbsentNoCheckIn,
			FinalizedAt:   &now,
		}
		if _, err := j.attendanceRepo.Create(ctx, day); err != nil {
			slog.Error("Cron: failed to mark no-check-in absence", "employee_id", emp.ID, "error", err)
			continue
		}
		marked++
	}

	slog.Info("Cron: marked no-check-in absences", "date", yesterday.Format("2006-01-02"), "count", marked)
	return nil
}

// PruneWeeklyCounters drops last week's counter rows once a new week has
// begun. Counters are keyed by week start, so a fresh week already reads
// as zero; this only clears out rows that no longer matter.
func (j *AttendanceJobs) PruneWeeklyCounters(ctx context.Context) error {
	now := j.now()
	// Monday, first hour after midnight
	if now.Weekday() != time.Monday || now.Hour() != 0 {
		return nil
	}

	previousWeek := attendance.WeekStart(now).AddDate(0, 0, -7)

	employees, err := j.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, emp := range employees {
		if err := j.counterRepo.Reset(ctx, emp.ID, previousWeek); err != nil {
			slog.Error("Cron: failed to reset weekly counters", "employee_id", emp.ID, "error", err)
		}
	}

	slog.Info("Cron: pruned weekly counters", "week_start", previousWeek.Format("2006-01-02"))
	return nil
}
