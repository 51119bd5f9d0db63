package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fieldforce-hq/fieldforce-backend-go/internal/domain/regularization"
	"github.com/fieldforce-hq/fieldforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RegularizationHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	MyQuota(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type RegularizationHandlerImpl struct {
	regularizationService regularization.RegularizationService
}

func NewRegularizationHandler(regularizationService regularization.RegularizationService) RegularizationHandler {
	return &RegularizationHandlerImpl{regularizationService: regularizationService}
}

func listFilterFromQuery(r *http.Request) regularization.ListFilter {
	filter := regularization.ListFilter{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	return filter
}

// Submit implements RegularizationHandler.
func (h *RegularizationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req regularization.SubmitRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.regularizationService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Regularization request submitted", created)
}

// ListMy implements RegularizationHandler.
func (h *RegularizationHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	list, err := h.regularizationService.ListMy(r.Context(), listFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

// MyQuota implements RegularizationHandler.
func (h *RegularizationHandlerImpl) MyQuota(w http.ResponseWriter, r *http.Request) {
	quota, err := h.regularizationService.MyQuota(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, quota)
}

// ListPending implements RegularizationHandler.
func (h *RegularizationHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.regularizationService.ListPending(r.Context(), listFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

// Approve implements RegularizationHandler.
func (h *RegularizationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	approved, err := h.regularizationService.Approve(r.Context(), requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization request approved", approved)
}

// Reject implements RegularizationHandler.
func (h *RegularizationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	// The comment is optional, so an empty body is accepted
	var req regularization.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Reject decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rejected, err := h.regularizationService.Reject(r.Context(), requestID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization request rejected", rejected)
}
