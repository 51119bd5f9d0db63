package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const dayColumns = `
	id, employee_id, date, check_in, check_out, worked_minutes,
	status, absent_reason, late_arrival, finalized_at, created_at, updated_at
`

func scanDay(row pgx.Row) (attendance.AttendanceDay, error) {
	var day attendance.AttendanceDay
	var reason *string
	err := row.Scan(
		&day.ID, &day.EmployeeID, &day.Date, &day.CheckIn, &day.CheckOut,
		&day.WorkedMinutes, &day.Status, &reason, &day.LateArrival,
		&day.FinalizedAt, &day.CreatedAt, &day.UpdatedAt,
	)
	if reason != nil {
		day.AbsentReason = attendance.AbsentReason(*reason)
	}
	return day, err
}

func absentReasonParam(reason attendance.AbsentReason) *string {
	if reason == "" {
		return nil
	}
	s := string(reason)
	return &s
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_days (
			id, employee_id, date, check_in, check_out, worked_minutes,
			status, absent_reason, late_arrival, finalized_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		day.ID,
		day.EmployeeID,
		day.Date,
		day.CheckIn,
		day.CheckOut,
		day.WorkedMinutes,
		day.Status,
		absentReasonParam(day.AbsentReason),
		day.LateArrival,
		day.FinalizedAt,
	).Scan(&day.CreatedAt, &day.UpdatedAt)

	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("failed to create attendance day: %w", err)
	}

	return day, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + dayColumns + `
		FROM attendance_days
		WHERE employee_id = $1
		  AND date = $2
		LIMIT 1
	`

	day, err := scanDay(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no record for that day
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &day, nil
}

// GetOpenDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenDay(ctx context.Context, employeeID string) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + dayColumns + `
		FROM attendance_days
		WHERE employee_id = $1
		  AND finalized_at IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	day, err := scanDay(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrNotCheckedIn
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to get open day: %w", err)
	}

	return day, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, day attendance.AttendanceDay) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_days
		SET check_in = $2,
			check_out = $3,
			worked_minutes = $4,
			status = $5,
			absent_reason = $6,
			late_arrival = $7,
			finalized_at = $8,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		day.ID,
		day.CheckIn,
		day.CheckOut,
		day.WorkedMinutes,
		day.Status,
		absentReasonParam(day.AbsentReason),
		day.LateArrival,
		day.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceDay, int64, error) {
	q := GetQuerier(ctx, a.db)

	where := `WHERE employee_id = $1`
	args := []interface{}{employeeID}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_days ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance days: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_days
		%s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d
	`, dayColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}

	return days, total, rows.Err()
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + dayColumns + `
		FROM attendance_days
		WHERE finalized_at IS NULL
		  AND date < $1
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open days: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}
