package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInvalidGoalPercentage):
		ValidationError(w, map[string]string{"wfoGoalPercentage": err.Error()})

	// Category domain errors
	case errors.Is(err, category.ErrCategoryNotFound):
		NotFound(w, "Category not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrAttendanceConflict):
		Conflict(w, "Attendance for this user and date was modified concurrently, retry the request")
	case errors.Is(err, attendance.ErrInvalidMonth):
		ValidationError(w, map[string]string{"month": err.Error()})

	default:
		slog.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		InternalServerError(w, "An unexpected error occurred")
	}
}
