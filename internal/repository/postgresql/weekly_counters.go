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

type weeklyCounterRepository struct {
	db *database.DB
}

func NewWeeklyCounterRepository(db *database.DB) attendance.WeeklyCounterRepository {
	return &weeklyCounterRepository{db: db}
}

// Get implements attendance.WeeklyCounterRepository.
// A missing row is a fresh week: counters at zero.
func (r *weeklyCounterRepository) Get(ctx context.Context, employeeID string, weekStart time.Time) (attendance.WeeklyCounters, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, week_start, late_arrival_count, worked_minutes, updated_at
		FROM weekly_counters
		WHERE employee_id = $1
		  AND week_start = $2
	`

	var counters attendance.WeeklyCounters
	err := q.QueryRow(ctx, query, employeeID, weekStart).Scan(
		&counters.EmployeeID, &counters.WeekStart,
		&counters.LateArrivalCount, &counters.WorkedMinutes, &counters.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.WeeklyCounters{EmployeeID: employeeID, WeekStart: weekStart}, nil
		}
		return attendance.WeeklyCounters{}, fmt.Errorf("failed to get weekly counters: %w", err)
	}

	return counters, nil
}

// AddLateArrival implements attendance.WeeklyCounterRepository.
// Single-statement upsert so concurrent increments for the same employee
// cannot be lost.
func (r *weeklyCounterRepository) AddLateArrival(ctx context.Context, employeeID string, weekStart time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO weekly_counters (employee_id, week_start, late_arrival_count, worked_minutes)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (employee_id, week_start)
		DO UPDATE SET late_arrival_count = weekly_counters.late_arrival_count + 1,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, employeeID, weekStart); err != nil {
		return fmt.Errorf("failed to add late arrival: %w", err)
	}
	return nil
}

// AddWorkedMinutes implements attendance.WeeklyCounterRepository.
func (r *weeklyCounterRepository) AddWorkedMinutes(ctx context.Context, employeeID string, weekStart time.Time, minutes int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO weekly_counters (employee_id, week_start, late_arrival_count, worked_minutes)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (employee_id, week_start)
		DO UPDATE SET worked_minutes = weekly_counters.worked_minutes + $3,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, employeeID, weekStart, minutes); err != nil {
		return fmt.Errorf("failed to add worked minutes: %w", err)
	}
	return nil
}

// Reset implements attendance.WeeklyCounterRepository.
// Deleting an absent row is a no-op, which makes the reset idempotent.
func (r *weeklyCounterRepository) Reset(ctx context.Context, employeeID string, weekStart time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM weekly_counters
		WHERE employee_id = $1
		  AND week_start = $2
	`

	if _, err := q.Exec(ctx, query, employeeID, weekStart); err != nil {
		return fmt.Errorf("failed to reset weekly counters: %w", err)
	}
	return nil
}
