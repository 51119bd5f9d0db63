package regularization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/regularization"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type RegularizationServiceImpl struct {
	db     *database.DB
	policy attendance.Policy
	regularization.RequestRepository
	employee.EmployeeRepository

	// now is the injected clock; quota months and new-hire grace are
	// evaluated against it.
	now func() time.Time
}

func NewRegularizationService(
	db *database.DB,
	policy attendance.Policy,
	requestRepo regularization.RequestRepository,
	employeeRepo employee.EmployeeRepository,
) *RegularizationServiceImpl {
	return &RegularizationServiceImpl{
		db:                 db,
		policy:             policy,
		RequestRepository:  requestRepo,
		EmployeeRepository: employeeRepo,
		now:                time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *RegularizationServiceImpl) WithClock(now func() time.Time) *RegularizationServiceImpl {
	s.now = now
	return s
}

func actorFromClaims(ctx context.Context) (employeeID string, role employee.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", fmt.Errorf("role claim is missing or invalid")
	}

	return employeeID, employee.Role(roleStr), nil
}

// at combines a calendar day with an HH:MM clock value in the day's
// location.
func at(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

// Submit implements regularization.RegularizationService.
// Business rules run in a fixed order so the caller always sees the
// first failure: reason, time range, minimum duration, duplicate, quota.
func (s *RegularizationServiceImpl) Submit(ctx context.Context, req regularization.SubmitRequest) (regularization.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return regularization.RequestResponse{}, err
	}

	employeeID, _, err := actorFromClaims(ctx)
	if err != nil {
		return regularization.RequestResponse{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" || len(reason) > regularization.MaxReasonLength {
		return regularization.RequestResponse{}, regularization.ErrInvalidReason
	}

	targetDate, _ := time.Parse("2006-01-02", req.TargetDate)
	inClock, _ := time.Parse("15:04", req.ProposedCheckIn)
	outClock, _ := time.Parse("15:04", req.ProposedCheckOut)
	proposedIn := at(targetDate, inClock)
	proposedOut := at(targetDate, outClock)

	if !proposedOut.After(proposedIn) {
		return regularization.RequestResponse{}, regularization.ErrInvalidTimeRange
	}

	if proposedOut.Sub(proposedIn) < s.policy.MinimumDailyDuration {
		return regularization.RequestResponse{}, regularization.ErrInsufficientHours
	}

	duplicate, err := s.RequestRepository.HasActiveForDate(ctx, employeeID, targetDate)
	if err != nil {
		return regularization.RequestResponse{}, fmt.Errorf("failed to check for duplicate request: %w", err)
	}
	if duplicate {
		return regularization.RequestResponse{}, regularization.ErrDuplicateRequest
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return regularization.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.now()
	if !emp.IsNewHire(now, s.policy.NewHireGraceDays) {
		approved, err := s.RequestRepository.CountApprovedInMonth(ctx, employeeID, now)
		if err != nil {
			return regularization.RequestResponse{}, fmt.Errorf("failed to count approved requests: %w", err)
		}
		if approved >= s.policy.MonthlyRegularizationLimit {
			return regularization.RequestResponse{}, regularization.ErrQuotaExceeded
		}
	}

	request := regularization.Request{
		ID:               uuid.NewString(),
		EmployeeID:       employeeID,
		TargetDate:       targetDate,
		ProposedCheckIn:  proposedIn,
		ProposedCheckOut: proposedOut,
		Reason:           reason,
		Status:           regularization.StatusPending,
		SubmittedAt:      now,
	}

	created, err := s.RequestRepository.Create(ctx, request)
	if err != nil {
		return regularization.RequestResponse{}, fmt.Errorf("failed to create regularization request: %w", err)
	}

	return mapRequestToResponse(created), nil
}

// ListMy implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) ListMy(ctx context.Context, filter regularization.ListFilter) (regularization.ListResponse, error) {
	employeeID, _, err := actorFromClaims(ctx)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	filter.Normalize()

	requests, total, err := s.RequestRepository.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return regularization.ListResponse{}, fmt.Errorf("failed to list regularization requests: %w", err)
	}

	return mapListResponse(requests, total, filter), nil
}

// MyQuota implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) MyQuota(ctx context.Context) (regularization.QuotaResponse, error) {
	employeeID, _, err := actorFromClaims(ctx)
	if err != nil {
		return regularization.QuotaResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return regularization.QuotaResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.now()
	approved, err := s.RequestRepository.CountApprovedInMonth(ctx, employeeID, now)
	if err != nil {
		return regularization.QuotaResponse{}, fmt.Errorf("failed to count approved requests: %w", err)
	}

	return regularization.QuotaResponse{
		Month:         now.Format("2006-01"),
		ApprovedCount: approved,
		Limit:         s.policy.MonthlyRegularizationLimit,
		NewHireGrace:  emp.IsNewHire(now, s.policy.NewHireGraceDays),
	}, nil
}

// ListPending implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) ListPending(ctx context.Context, filter regularization.ListFilter) (regularization.ListResponse, error) {
	managerID, _, err := actorFromClaims(ctx)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	filter.Normalize()

	requests, total, err := s.RequestRepository.ListPendingByManager(ctx, managerID, filter)
	if err != nil {
		return regularization.ListResponse{}, fmt.Errorf("failed to list pending requests: %w", err)
	}

	return mapListResponse(requests, total, filter), nil
}

// decide loads a pending request and checks the approver's authority over
// its employee. Admins pass; managers must manage the requester.
func (s *RegularizationServiceImpl) decide(ctx context.Context, requestID string) (regularization.Request, string, error) {
	approverID, role, err := actorFromClaims(ctx)
	if err != nil {
		return regularization.Request{}, "", err
	}

	request, err := s.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return regularization.Request{}, "", err
	}

	if request.Terminal() {
		return regularization.Request{}, "", regularization.ErrAlreadyProcessed
	}

	if role != employee.RoleAdmin {
		emp, err := s.EmployeeRepository.GetByID(ctx, request.EmployeeID)
		if err != nil {
			return regularization.Request{}, "", fmt.Errorf("failed to get employee: %w", err)
		}
		if !emp.ManagedBy(approverID) {
			return regularization.Request{}, "", regularization.ErrNotTeamManager
		}
	}

	return request, approverID, nil
}

// Approve implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Approve(ctx context.Context, requestID string) (regularization.RequestResponse, error) {
	request, approverID, err := s.decide(ctx, requestID)
	if err != nil {
		return regularization.RequestResponse{}, err
	}

	decidedAt := s.now()
	if err := s.RequestRepository.UpdateStatus(ctx, request.ID, regularization.StatusApproved, approverID, decidedAt, nil); err != nil {
		return regularization.RequestResponse{}, err
	}

	request.Status = regularization.StatusApproved
	request.ApprovedBy = &approverID
	request.ApprovedAt = &decidedAt

	return mapRequestToResponse(request), nil
}

// Reject implements regularization.RegularizationService.
func (s *RegularizationServiceImpl) Reject(ctx context.Context, requestID string, req regularization.RejectRequest) (regularization.RequestResponse, error) {
	request, approverID, err := s.decide(ctx, requestID)
	if err != nil {
		return regularization.RequestResponse{}, err
	}

	decidedAt := s.now()
	if err := s.RequestRepository.UpdateStatus(ctx, request.ID, regularization.StatusRejected, approverID, decidedAt, req.Comment); err != nil {
		return regularization.RequestResponse{}, err
	}

	request.Status = regularization.StatusRejected
	request.ApprovedBy = &approverID
	request.ApprovedAt = &decidedAt
	request.RejectionComment = req.Comment

	return mapRequestToResponse(request), nil
}

func formatWorkDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}

// mapRequestToResponse converts a Request entity to RequestResponse
func mapRequestToResponse(req regularization.Request) regularization.RequestResponse {
	return regularization.RequestResponse{
		ID:               req.ID,
		EmployeeID:       req.EmployeeID,
		EmployeeName:     req.EmployeeName,
		TargetDate:       req.TargetDate.Format("2006-01-02"),
		ProposedCheckIn:  req.ProposedCheckIn.Format("15:04"),
		ProposedCheckOut: req.ProposedCheckOut.Format("15:04"),
		WorkDuration:     formatWorkDuration(req.WorkDuration()),
		Reason:           req.Reason,
		Status:           string(req.Status),
		SubmittedAt:      req.SubmittedAt.Format("2006-01-02 15:04:05"),
		RejectionComment: req.RejectionComment,
	}
}

func mapListResponse(requests []regularization.Request, total int64, filter regularization.ListFilter) regularization.ListResponse {
	responses := make([]regularization.RequestResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, mapRequestToResponse(req))
	}

	return regularization.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Requests:   responses,
	}
}
