package employee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
}

func NewEmployeeService(employeeRepository employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.ManagerID != nil {
		manager, err := s.EmployeeRepository.GetByID(ctx, *req.ManagerID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return employee.EmployeeResponse{}, employee.ErrManagerNotFound
			}
			return employee.EmployeeResponse{}, fmt.Errorf("failed to get manager: %w", err)
		}
		if !manager.IsManager() {
			return employee.EmployeeResponse{}, employee.ErrNotAManager
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	hireDate, _ := time.Parse("2006-01-02", req.HireDate)

	emp := employee.Employee{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Code:         req.Code,
		PasswordHash: &hashed,
		Role:         employee.Role(req.Role),
		HireDate:     hireDate,
		ManagerID:    req.ManagerID,
		Status:       employee.StatusActive,
	}

	created, err := s.EmployeeRepository.Create(ctx, emp)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapEmployeeToResponse(created), nil
}

// ListTeam implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListTeam(ctx context.Context) ([]employee.EmployeeResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	managerID, ok := claims["employee_id"].(string)
	if !ok || managerID == "" {
		return nil, fmt.Errorf("employee_id claim is missing or invalid")
	}

	team, err := s.EmployeeRepository.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(team))
	for _, member := range team {
		responses = append(responses, mapEmployeeToResponse(member))
	}
	return responses, nil
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:          emp.ID,
		FullName:    emp.FullName,
		Code:        emp.Code,
		Role:        string(emp.Role),
		HireDate:    emp.HireDate.Format("2006-01-02"),
		ManagerID:   emp.ManagerID,
		ManagerName: emp.ManagerName,
		Status:      string(emp.Status),
	}
}
