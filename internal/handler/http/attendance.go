package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	GetByUserAndDate(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	GetMonthlyStats(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Upsert implements AttendanceHandler.
func (h *attendanceHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpsertAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.DebugContext(r.Context(), "Failed to decode attendance body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, created, err := h.attendanceService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	if created {
		response.CreatedAt(w, fmt.Sprintf("/api/attendance/%d", result.ID), "Attendance recorded", result)
		return
	}
	response.SuccessWithMessage(w, "Attendance updated", result)
}

// GetByUserAndDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetByUserAndDate(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Query(r, "userId")
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	result, err := h.attendanceService.GetByUserAndDate(r.Context(), attendance.DailyQuery{
		UserID: userID,
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// GetMonthly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	query, err := monthlyQuery(r)
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	result, err := h.attendanceService.GetMonthly(r.Context(), query)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	query, err := monthlyQuery(r)
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	result, err := h.attendanceService.GetMonthlyStats(r.Context(), query)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.List(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	if err := h.attendanceService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance deleted", nil)
}

func monthlyQuery(r *http.Request) (attendance.MonthlyQuery, error) {
	userID, err := int64Query(r, "userId")
	if err != nil {
		return attendance.MonthlyQuery{}, err
	}
	year, err := intQuery(r, "year")
	if err != nil {
		return attendance.MonthlyQuery{}, err
	}
	month, err := intQuery(r, "month")
	if err != nil {
		return attendance.MonthlyQuery{}, err
	}

	return attendance.MonthlyQuery{UserID: userID, Year: year, Month: month}, nil
}

func handleParamError(w http.ResponseWriter, r *http.Request, err error) {
	var perr paramError
	if errors.As(err, &perr) {
		response.BadRequest(w, "Invalid request parameters", perr.details())
		return
	}
	response.HandleError(w, r, err)
}
