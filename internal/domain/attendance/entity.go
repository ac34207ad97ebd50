package attendance

import (
	"time"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// Attendance is the single record of a user's category on a calendar date.
// At most one exists per (UserID, Date).
type Attendance struct {
	ID         int64
	UserID     int64
	CategoryID int64
	Date       time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Join
	User     user.User
	Category category.Category
}

func (a Attendance) ToResponse() AttendanceResponse {
	return AttendanceResponse{
		ID:             a.ID,
		AttendanceDate: a.Date.Format(validator.DateLayout),
		Category:       a.Category.ToResponse(),
		User:           a.User.ToResponse(),
	}
}

// ToResponses maps a slice, returning an empty (non-nil) slice for no rows.
func ToResponses(items []Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(items))
	for _, att := range items {
		responses = append(responses, att.ToResponse())
	}
	return responses
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
