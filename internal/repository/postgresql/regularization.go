package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/regularization"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type regularizationRepository struct {
	db *database.DB
}

func NewRegularizationRepository(db *database.DB) regularization.RequestRepository {
	return &regularizationRepository{db: db}
}

const requestColumns = `
	r.id, r.employee_id, r.target_date, r.proposed_check_in, r.proposed_check_out,
	r.reason, r.status, r.submitted_at, r.approved_by, r.approved_at,
	r.rejection_comment, r.created_at, r.updated_at
`

func scanRequest(row pgx.Row, withName bool) (regularization.Request, error) {
	var req regularization.Request
	dest := []interface{}{
		&req.ID, &req.EmployeeID, &req.TargetDate, &req.ProposedCheckIn,
		&req.ProposedCheckOut, &req.Reason, &req.Status, &req.SubmittedAt,
		&req.ApprovedBy, &req.ApprovedAt, &req.RejectionComment,
		&req.CreatedAt, &req.UpdatedAt,
	}
	if withName {
		dest = append(dest, &req.EmployeeName)
	}
	err := row.Scan(dest...)
	return req, err
}

// Create implements regularization.RequestRepository.
func (r *regularizationRepository) Create(ctx context.Context, req regularization.Request) (regularization.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO regularization_requests (
			id, employee_id, target_date, proposed_check_in, proposed_check_out,
			reason, status, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID,
		req.EmployeeID,
		req.TargetDate,
		req.ProposedCheckIn,
		req.ProposedCheckOut,
		req.Reason,
		req.Status,
		req.SubmittedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return regularization.Request{}, fmt.Errorf("failed to create regularization request: %w", err)
	}

	return req, nil
}

// GetByID implements regularization.RequestRepository.
func (r *regularizationRepository) GetByID(ctx context.Context, id string) (regularization.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `, e.full_name
		FROM regularization_requests r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.id = $1
	`

	req, err := scanRequest(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return regularization.Request{}, regularization.ErrRequestNotFound
		}
		return regularization.Request{}, fmt.Errorf("failed to get regularization request: %w", err)
	}

	return req, nil
}

// HasActiveForDate implements regularization.RequestRepository.
func (r *regularizationRepository) HasActiveForDate(ctx context.Context, employeeID string, targetDate time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM regularization_requests
			WHERE employee_id = $1
			  AND target_date = $2
			  AND status IN ('pending', 'approved')
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, targetDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for duplicate request: %w", err)
	}

	return exists, nil
}

// CountApprovedInMonth implements regularization.RequestRepository.
// Quota is consumed on approval, counted against the month the request
// was submitted in.
func (r *regularizationRepository) CountApprovedInMonth(ctx context.Context, employeeID string, ref time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT COUNT(*)
		FROM regularization_requests
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND submitted_at >= $2
		  AND submitted_at < $3
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, monthStart, nextMonth).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved requests: %w", err)
	}

	return count, nil
}

// ListByEmployee implements regularization.RequestRepository.
func (r *regularizationRepository) ListByEmployee(ctx context.Context, employeeID string, filter regularization.ListFilter) ([]regularization.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE r.employee_id = $1`
	args := []interface{}{employeeID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM regularization_requests r ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count regularization requests: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	listQuery := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM regularization_requests r
		JOIN employees e ON e.id = r.employee_id
		%s
		ORDER BY r.submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, requestColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list regularization requests: %w", err)
	}
	defer rows.Close()

	var requests []regularization.Request
	for rows.Next() {
		req, err := scanRequest(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan regularization request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// ListPendingByManager implements regularization.RequestRepository.
func (r *regularizationRepository) ListPendingByManager(ctx context.Context, managerID string, filter regularization.ListFilter) ([]regularization.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `
		WHERE r.status = 'pending'
		  AND e.manager_id = $1
	`

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM regularization_requests r
		JOIN employees e ON e.id = r.employee_id
	` + where
	if err := q.QueryRow(ctx, countQuery, managerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending requests: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM regularization_requests r
		JOIN employees e ON e.id = r.employee_id
		%s
		ORDER BY r.submitted_at
		LIMIT $2 OFFSET $3
	`, requestColumns, where)

	rows, err := q.Query(ctx, listQuery, managerID, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []regularization.Request
	for rows.Next() {
		req, err := scanRequest(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan regularization request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// UpdateStatus implements regularization.RequestRepository.
// The status guard in the WHERE clause makes the terminal transition
// race-safe: a second approve/reject finds zero pending rows.
func (r *regularizationRepository) UpdateStatus(ctx context.Context, id string, status regularization.RequestStatus, approvedBy string, approvedAt time.Time, rejectionComment *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE regularization_requests
		SET status = $2,
			approved_by = $3,
			approved_at = $4,
			rejection_comment = $5,
			updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, id, status, approvedBy, approvedAt, rejectionComment)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return regularization.ErrAlreadyProcessed
	}

	return nil
}
