package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, full_name, code, password_hash, role, hire_date, manager_id,
	status, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.Code, &emp.PasswordHash, &emp.Role,
		&emp.HireDate, &emp.ManagerID, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			id, full_name, code, password_hash, role, hire_date, manager_id, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		emp.ID,
		emp.FullName,
		emp.Code,
		emp.PasswordHash,
		emp.Role,
		emp.HireDate,
		emp.ManagerID,
		emp.Status,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return emp, nil
}

// GetByCode implements employee.EmployeeRepository.
func (r *employeeRepository) GetByCode(ctx context.Context, code string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE code = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by code: %w", err)
	}

	return emp, nil
}

// ListByManager implements employee.EmployeeRepository.
func (r *employeeRepository) ListByManager(ctx context.Context, managerID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE manager_id = $1
		  AND status = 'active'
		ORDER BY full_name
	`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var team []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		team = append(team, emp)
	}

	return team, rows.Err()
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE status = 'active'
		ORDER BY full_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
