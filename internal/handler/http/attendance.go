package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	WeeklySummary(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CheckIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	day, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in recorded", day)
}

// CheckOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CheckOut decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	day, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out recorded", day)
}

// GetMyAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	filter := attendance.MyAttendanceFilter{}

	q := r.URL.Query()
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	list, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

// WeeklySummary implements AttendanceHandler.
func (h *AttendanceHandlerImpl) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendanceService.WeeklySummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
