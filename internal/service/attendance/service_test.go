package attendance

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmployeeID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

// memoryDayRepo is an in-memory attendance.AttendanceRepository.
type memoryDayRepo struct {
	days map[string]attendance.AttendanceDay // keyed by ID
}

func newMemoryDayRepo() *memoryDayRepo {
	return &memoryDayRepo{days: make(map[string]attendance.AttendanceDay)}
}

func (m *memoryDayRepo) Create(_ context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	day.CreatedAt = time.Now()
	day.UpdatedAt = day.CreatedAt
	m.days[day.ID] = day
	return day, nil
}

func (m *memoryDayRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.AttendanceDay, error) {
	for _, day := range m.days {
		if day.EmployeeID == employeeID && day.Date.Equal(date) {
			found := day
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryDayRepo) GetOpenDay(_ context.Context, employeeID string) (attendance.AttendanceDay, error) {
	for _, day := range m.days {
		if day.EmployeeID == employeeID && day.FinalizedAt == nil {
			return day, nil
		}
	}
	return attendance.AttendanceDay{}, attendance.ErrNotCheckedIn
}

func (m *memoryDayRepo) Update(_ context.Context, day attendance.AttendanceDay) error {
	if _, ok := m.days[day.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	day.UpdatedAt = time.Now()
	m.days[day.ID] = day
	return nil
}

func (m *memoryDayRepo) ListByEmployee(_ context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceDay, int64, error) {
	var days []attendance.AttendanceDay
	for _, day := range m.days {
		if day.EmployeeID == employeeID {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.After(days[j].Date) })
	return days, int64(len(days)), nil
}

func (m *memoryDayRepo) ListOpenBefore(_ context.Context, date time.Time) ([]attendance.AttendanceDay, error) {
	var days []attendance.AttendanceDay
	for _, day := range m.days {
		if day.FinalizedAt == nil && day.Date.Before(date) {
			days = append(days, day)
		}
	}
	return days, nil
}

// memoryCounterRepo is an in-memory attendance.WeeklyCounterRepository.
type memoryCounterRepo struct {
	counters map[string]attendance.WeeklyCounters
}

func newMemoryCounterRepo() *memoryCounterRepo {
	return &memoryCounterRepo{counters: make(map[string]attendance.WeeklyCounters)}
}

func counterKey(employeeID string, weekStart time.Time) string {
	return fmt.Sprintf("%s|%s", employeeID, weekStart.Format("2006-01-02"))
}

func (m *memoryCounterRepo) Get(_ context.Context, employeeID string, weekStart time.Time) (attendance.WeeklyCounters, error) {
	if c, ok := m.counters[counterKey(employeeID, weekStart)]; ok {
		return c, nil
	}
	return attendance.WeeklyCounters{EmployeeID: employeeID, WeekStart: weekStart}, nil
}

func (m *memoryCounterRepo) AddLateArrival(_ context.Context, employeeID string, weekStart time.Time) error {
	key := counterKey(employeeID, weekStart)
	c := m.counters[key]
	c.EmployeeID = employeeID
	c.WeekStart = weekStart
	c.LateArrivalCount++
	m.counters[key] = c
	return nil
}

func (m *memoryCounterRepo) AddWorkedMinutes(_ context.Context, employeeID string, weekStart time.Time, minutes int) error {
	key := counterKey(employeeID, weekStart)
	c := m.counters[key]
	c.EmployeeID = employeeID
	c.WeekStart = weekStart
	c.WorkedMinutes += minutes
	m.counters[key] = c
	return nil
}

func (m *memoryCounterRepo) Reset(_ context.Context, employeeID string, weekStart time.Time) error {
	delete(m.counters, counterKey(employeeID, weekStart))
	return nil
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

func newTestService(dayRepo *memoryDayRepo, counterRepo *memoryCounterRepo, now time.Time) *AttendanceServiceImpl {
	return NewAttendanceService(nil, attendance.DefaultPolicy(), dayRepo, counterRepo).
		WithClock(func() time.Time { return now })
}

func rfc3339(t time.Time) *string {
	s := t.Format(time.RFC3339)
	return &s
}

func TestAttendanceService_CheckIn_OnTime(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) // Monday 09:00
	svc := newTestService(dayRepo, counterRepo, at)
	ctx := authedContext(t, testEmployeeID, "isd")

	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})

	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.False(t, resp.LateArrival)
	assert.False(t, resp.Finalized)
	assert.NotNil(t, resp.CheckInTime)
}

func TestAttendanceService_CheckIn_LocationNotVerified(t *testing.T) {
	svc := newTestService(newMemoryDayRepo(), newMemoryCounterRepo(), time.Now())
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: false})

	assert.ErrorIs(t, err, attendance.ErrLocationNotVerified)
}

func TestAttendanceService_CheckIn_AlreadyCheckedIn(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, at)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckIn_FirstLateArrivalTolerated(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	at := time.Date(2025, 3, 10, 13, 5, 0, 0, time.UTC) // Monday 13:05
	svc := newTestService(dayRepo, counterRepo, at)
	ctx := authedContext(t, testEmployeeID, "isd")

	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})

	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.True(t, resp.LateArrival)
	assert.False(t, resp.Finalized)

	counters, err := counterRepo.Get(context.Background(), testEmployeeID, attendance.WeekStart(at))
	require.NoError(t, err)
	assert.Equal(t, 1, counters.LateArrivalCount)
}

func TestAttendanceService_CheckIn_SecondLateArrivalRejected(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	monday := time.Date(2025, 3, 10, 13, 5, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, monday)
	ctx := authedContext(t, testEmployeeID, "isd")

	// Monday: first late arrival of the week, tolerated
	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	// Wednesday: second late arrival, same week
	wednesday := time.Date(2025, 3, 12, 13, 20, 0, 0, time.UTC)
	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{
		At:               rfc3339(wednesday),
		LocationVerified: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "absent", resp.Status)
	require.NotNil(t, resp.AbsentReason)
	assert.Equal(t, "late_policy_violation", *resp.AbsentReason)
	assert.True(t, resp.Finalized)

	// The rejection must not touch the counter
	counters, err := counterRepo.Get(context.Background(), testEmployeeID, attendance.WeekStart(monday))
	require.NoError(t, err)
	assert.Equal(t, 1, counters.LateArrivalCount)
}

func TestAttendanceService_CheckIn_RejectedDayIsTerminal(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	monday := time.Date(2025, 3, 10, 13, 5, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, monday)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	wednesday := time.Date(2025, 3, 12, 13, 20, 0, 0, time.UTC)
	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{At: rfc3339(wednesday), LocationVerified: true})
	require.NoError(t, err)

	// Retrying the same day, even on time by the clock, hits the
	// finalized record
	laterSameDay := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{At: rfc3339(laterSameDay), LocationVerified: true})
	assert.ErrorIs(t, err, attendance.ErrDayAlreadyFinalized)
}

func TestAttendanceService_CheckIn_NewWeekResetsAllowance(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	friday := time.Date(2025, 3, 14, 13, 5, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, friday)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	// Next Monday is a fresh week, the allowance is back
	nextMonday := time.Date(2025, 3, 17, 13, 10, 0, 0, time.UTC)
	resp, err := svc.CheckIn(ctx, attendance.CheckInRequest{At: rfc3339(nextMonday), LocationVerified: true})

	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.True(t, resp.LateArrival)
}

func TestAttendanceService_CheckOut_Present(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, checkIn)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	checkOut := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC) // 4.5h worked
	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{At: rfc3339(checkOut)})

	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.True(t, resp.Finalized)
	require.NotNil(t, resp.WorkedHours)
	assert.InDelta(t, 4.5, *resp.WorkedHours, 0.001)

	counters, err := counterRepo.Get(context.Background(), testEmployeeID, attendance.WeekStart(checkIn))
	require.NoError(t, err)
	assert.Equal(t, 270, counters.WorkedMinutes)
}

func TestAttendanceService_CheckOut_InsufficientHours(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, checkIn)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	checkOut := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // 3h worked
	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{At: rfc3339(checkOut)})

	require.NoError(t, err)
	assert.Equal(t, "absent", resp.Status)
	require.NotNil(t, resp.AbsentReason)
	assert.Equal(t, "insufficient_hours", *resp.AbsentReason)
	assert.True(t, resp.Finalized)

	// Short days still count toward the weekly hours total
	counters, err := counterRepo.Get(context.Background(), testEmployeeID, attendance.WeekStart(checkIn))
	require.NoError(t, err)
	assert.Equal(t, 180, counters.WorkedMinutes)
}

func TestAttendanceService_CheckOut_ExactMinimumIsPresent(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, checkIn)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	checkOut := time.Date(2025, 3, 10, 12, 45, 0, 0, time.UTC) // exactly 3h45m
	resp, err := svc.CheckOut(ctx, attendance.CheckOutRequest{At: rfc3339(checkOut)})

	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
}

func TestAttendanceService_CheckOut_NotCheckedIn(t *testing.T) {
	svc := newTestService(newMemoryDayRepo(), newMemoryCounterRepo(), time.Now())
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})

	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckOut_InvalidTimeRange(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, checkIn)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{At: rfc3339(checkIn)})
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeRange)

	// The day stays open after the failed attempt
	day, err := dayRepo.GetOpenDay(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.True(t, day.Open())
}

func TestAttendanceService_WeeklySummary(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC) // Wednesday
	svc := newTestService(dayRepo, counterRepo, now)
	ctx := authedContext(t, testEmployeeID, "isd")

	weekStart := attendance.WeekStart(now)
	require.NoError(t, counterRepo.AddWorkedMinutes(context.Background(), testEmployeeID, weekStart, 16*60))
	require.NoError(t, counterRepo.AddLateArrival(context.Background(), testEmployeeID, weekStart))

	summary, err := svc.WeeklySummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", summary.WeekStart)
	assert.InDelta(t, 16.0, summary.WorkedHours, 0.001)
	assert.InDelta(t, 40.0, summary.ExpectedHours, 0.001)
	assert.InDelta(t, 24.0, summary.DeficitHours, 0.001)
	assert.Equal(t, 1, summary.LateArrivalCount)
}

func TestAttendanceService_GetMyAttendance(t *testing.T) {
	dayRepo := newMemoryDayRepo()
	counterRepo := newMemoryCounterRepo()
	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(dayRepo, counterRepo, checkIn)
	ctx := authedContext(t, testEmployeeID, "isd")

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{LocationVerified: true})
	require.NoError(t, err)

	list, err := svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	require.Len(t, list.Days, 1)
	assert.Equal(t, "2025-03-10", list.Days[0].Date)
}
