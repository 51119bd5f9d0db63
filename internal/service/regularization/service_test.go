package regularization

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/regularization"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testISDID     = "6ba7b810-9dad-11d1-80b4-00c04fd430c1"
	testManagerID = "6ba7b810-9dad-11d1-80b4-00c04fd430c2"
	testAdminID   = "6ba7b810-9dad-11d1-80b4-00c04fd430c3"
	testOutsider  = "6ba7b810-9dad-11d1-80b4-00c04fd430c4"
)

// memoryRequestRepo is an in-memory regularization.RequestRepository.
type memoryRequestRepo struct {
	requests map[string]regularization.Request
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{requests: make(map[string]regularization.Request)}
}

func (m *memoryRequestRepo) Create(_ context.Context, req regularization.Request) (regularization.Request, error) {
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryRequestRepo) GetByID(_ context.Context, id string) (regularization.Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return regularization.Request{}, regularization.ErrRequestNotFound
	}
	return req, nil
}

func (m *memoryRequestRepo) HasActiveForDate(_ context.Context, employeeID string, targetDate time.Time) (bool, error) {
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.TargetDate.Equal(targetDate) &&
			(req.Status == regularization.StatusPending || req.Status == regularization.StatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRequestRepo) CountApprovedInMonth(_ context.Context, employeeID string, ref time.Time) (int, error) {
	count := 0
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.Status == regularization.StatusApproved &&
			req.SubmittedAt.Year() == ref.Year() && req.SubmittedAt.Month() == ref.Month() {
			count++
		}
	}
	return count, nil
}

func (m *memoryRequestRepo) ListByEmployee(_ context.Context, employeeID string, filter regularization.ListFilter) ([]regularization.Request, int64, error) {
	var requests []regularization.Request
	for _, req := range m.requests {
		if req.EmployeeID != employeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		requests = append(requests, req)
	}
	return requests, int64(len(requests)), nil
}

func (m *memoryRequestRepo) ListPendingByManager(_ context.Context, managerID string, filter regularization.ListFilter) ([]regularization.Request, int64, error) {
	var requests []regularization.Request
	for _, req := range m.requests {
		if req.Status == regularization.StatusPending && req.EmployeeID == testISDID && managerID == testManagerID {
			requests = append(requests, req)
		}
	}
	return requests, int64(len(requests)), nil
}

func (m *memoryRequestRepo) UpdateStatus(_ context.Context, id string, status regularization.RequestStatus, approvedBy string, approvedAt time.Time, rejectionComment *string) error {
	req, ok := m.requests[id]
	if !ok || req.Status != regularization.StatusPending {
		return regularization.ErrAlreadyProcessed
	}
	req.Status = status
	req.ApprovedBy = &approvedBy
	req.ApprovedAt = &approvedAt
	req.RejectionComment = rejectionComment
	m.requests[id] = req
	return nil
}

// memoryEmployeeRepo is an in-memory employee.EmployeeRepository.
type memoryEmployeeRepo struct {
	employees map[string]employee.Employee
}

func newMemoryEmployeeRepo(employees ...employee.Employee) *memoryEmployeeRepo {
	repo := &memoryEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, emp := range employees {
		repo.employees[emp.ID] = emp
	}
	return repo
}

func (m *memoryEmployeeRepo) Create(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	m.employees[emp.ID] = emp
	return emp, nil
}

func (m *memoryEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *memoryEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	for _, emp := range m.employees {
		if emp.Code == code {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployeeRepo) ListByManager(_ context.Context, managerID string) ([]employee.Employee, error) {
	var team []employee.Employee
	for _, emp := range m.employees {
		if emp.ManagerID != nil && *emp.ManagerID == managerID {
			team = append(team, emp)
		}
	}
	return team, nil
}

func (m *memoryEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var active []employee.Employee
	for _, emp := range m.employees {
		if emp.Status == employee.StatusActive {
			active = append(active, emp)
		}
	}
	return active, nil
}

func authedContext(t *testing.T, employeeID string, role string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        role,
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// testNow is a Tuesday well past any hire-date grace in the fixtures.
var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func testEmployees() []employee.Employee {
	managerID := testManagerID
	return []employee.Employee{
		{
			ID:        testISDID,
			FullName:  "Field Employee",
			Code:      "1001-0001",
			Role:      employee.RoleISD,
			HireDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			ManagerID: &managerID,
			Status:    employee.StatusActive,
		},
		{
			ID:       testManagerID,
			FullName: "Team Manager",
			Code:     "1001-0002",
			Role:     employee.RoleManager,
			HireDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			Status:   employee.StatusActive,
		},
		{
			ID:       testAdminID,
			FullName: "Admin",
			Code:     "1001-0003",
			Role:     employee.RoleAdmin,
			HireDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
			Status:   employee.StatusActive,
		},
		{
			ID:       testOutsider,
			FullName: "Other Manager",
			Code:     "1001-0004",
			Role:     employee.RoleManager,
			HireDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			Status:   employee.StatusActive,
		},
	}
}

func newTestService(requestRepo *memoryRequestRepo, employeeRepo *memoryEmployeeRepo) *RegularizationServiceImpl {
	return NewRegularizationService(nil, attendance.DefaultPolicy(), requestRepo, employeeRepo).
		WithClock(func() time.Time { return testNow })
}

func validSubmit() regularization.SubmitRequest {
	return regularization.SubmitRequest{
		TargetDate:       "2025-06-05",
		ProposedCheckIn:  "09:00",
		ProposedCheckOut: "17:00",
		Reason:           "Device battery died before check-in",
	}
}

func seedApproved(repo *memoryRequestRepo, employeeID string, n int) {
	for i := 0; i < n; i++ {
		approvedBy := testManagerID
		approvedAt := testNow
		id := uuid.NewString()
		repo.requests[id] = regularization.Request{
			ID:          id,
			EmployeeID:  employeeID,
			TargetDate:  testNow.AddDate(0, 0, -(i + 10)),
			Status:      regularization.StatusApproved,
			SubmittedAt: testNow.AddDate(0, 0, -(i + 5)),
			ApprovedBy:  &approvedBy,
			ApprovedAt:  &approvedAt,
		}
	}
}

func TestRegularizationService_Submit_Success(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	resp, err := svc.Submit(ctx, validSubmit())

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2025-06-05", resp.TargetDate)
	assert.Equal(t, "8h0m", resp.WorkDuration)
}

func TestRegularizationService_Submit_EmptyReason(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	req := validSubmit()
	req.Reason = "   "
	_, err := svc.Submit(ctx, req)

	assert.ErrorIs(t, err, regularization.ErrInvalidReason)
}

func TestRegularizationService_Submit_ReasonTooLong(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	req := validSubmit()
	req.Reason = strings.Repeat("x", regularization.MaxReasonLength+1)
	_, err := svc.Submit(ctx, req)

	assert.ErrorIs(t, err, regularization.ErrInvalidReason)
}

func TestRegularizationService_Submit_InvalidTimeRange(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	req := validSubmit()
	req.ProposedCheckIn = "17:00"
	req.ProposedCheckOut = "09:00"
	_, err := svc.Submit(ctx, req)

	assert.ErrorIs(t, err, regularization.ErrInvalidTimeRange)
}

func TestRegularizationService_Submit_InsufficientHours(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	req := validSubmit()
	req.ProposedCheckIn = "09:00"
	req.ProposedCheckOut = "12:00"
	_, err := svc.Submit(ctx, req)

	assert.ErrorIs(t, err, regularization.ErrInsufficientHours)
}

func TestRegularizationService_Submit_ExactMinimumAccepted(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	req := validSubmit()
	req.ProposedCheckIn = "09:00"
	req.ProposedCheckOut = "12:45"
	resp, err := svc.Submit(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "3h45m", resp.WorkDuration)
}

func TestRegularizationService_Submit_DuplicateRequest(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	_, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, validSubmit())
	assert.ErrorIs(t, err, regularization.ErrDuplicateRequest)
}

func TestRegularizationService_Submit_QuotaExceeded(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	seedApproved(requestRepo, testISDID, 5)
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	_, err := svc.Submit(ctx, validSubmit())

	assert.ErrorIs(t, err, regularization.ErrQuotaExceeded)
}

func TestRegularizationService_Submit_NewHireBypassesQuota(t *testing.T) {
	employees := testEmployees()
	employees[0].HireDate = testNow.AddDate(0, 0, -10) // hired 10 days ago

	requestRepo := newMemoryRequestRepo()
	seedApproved(requestRepo, testISDID, 5)
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(employees...))
	ctx := authedContext(t, testISDID, "isd")

	resp, err := svc.Submit(ctx, validSubmit())

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestRegularizationService_Approve_ByManager(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))

	resp, err := svc.Submit(authedContext(t, testISDID, "isd"), validSubmit())
	require.NoError(t, err)

	approved, err := svc.Approve(authedContext(t, testManagerID, "manager"), resp.ID)

	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
}

func TestRegularizationService_Approve_ByAdmin(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))

	resp, err := svc.Submit(authedContext(t, testISDID, "isd"), validSubmit())
	require.NoError(t, err)

	approved, err := svc.Approve(authedContext(t, testAdminID, "admin"), resp.ID)

	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
}

func TestRegularizationService_Approve_NotTeamManager(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))

	resp, err := svc.Submit(authedContext(t, testISDID, "isd"), validSubmit())
	require.NoError(t, err)

	_, err = svc.Approve(authedContext(t, testOutsider, "manager"), resp.ID)

	assert.ErrorIs(t, err, regularization.ErrNotTeamManager)
}

func TestRegularizationService_Approve_AlreadyProcessed(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))
	managerCtx := authedContext(t, testManagerID, "manager")

	resp, err := svc.Submit(authedContext(t, testISDID, "isd"), validSubmit())
	require.NoError(t, err)

	_, err = svc.Approve(managerCtx, resp.ID)
	require.NoError(t, err)

	_, err = svc.Reject(managerCtx, resp.ID, regularization.RejectRequest{})
	assert.ErrorIs(t, err, regularization.ErrAlreadyProcessed)
}

func TestRegularizationService_Reject_WithComment(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))

	resp, err := svc.Submit(authedContext(t, testISDID, "isd"), validSubmit())
	require.NoError(t, err)

	comment := "No field visit scheduled that day"
	rejected, err := svc.Reject(authedContext(t, testManagerID, "manager"), resp.ID, regularization.RejectRequest{Comment: &comment})

	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionComment)
	assert.Equal(t, comment, *rejected.RejectionComment)
}

func TestRegularizationService_Approve_NotFound(t *testing.T) {
	svc := newTestService(newMemoryRequestRepo(), newMemoryEmployeeRepo(testEmployees()...))

	_, err := svc.Approve(authedContext(t, testManagerID, "manager"), uuid.NewString())

	assert.ErrorIs(t, err, regularization.ErrRequestNotFound)
}

func TestRegularizationService_MyQuota(t *testing.T) {
	requestRepo := newMemoryRequestRepo()
	seedApproved(requestRepo, testISDID, 3)
	svc := newTestService(requestRepo, newMemoryEmployeeRepo(testEmployees()...))
	ctx := authedContext(t, testISDID, "isd")

	quota, err := svc.MyQuota(ctx)

	require.NoError(t, err)
	assert.Equal(t, "2025-06", quota.Month)
	assert.Equal(t, 3, quota.ApprovedCount)
	assert.Equal(t, 5, quota.Limit)
	assert.False(t, quota.NewHireGrace)
}
