package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListTeam(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &EmployeeHandlerImpl{employeeService: employeeService}
}

// Create implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create employee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.employeeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Employee onboarded", "employee_id", created.ID)
	response.Created(w, "Employee created", created)
}

// ListTeam implements EmployeeHandler.
func (h *EmployeeHandlerImpl) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.employeeService.ListTeam(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, team)
}
