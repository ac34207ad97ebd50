package attendance

import (
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type AttendanceResponse struct {
	ID             int64                     `json:"id"`
	AttendanceDate string                    `json:"attendanceDate"`
	Category       category.CategoryResponse `json:"category"`
	User           user.UserResponse         `json:"user"`
}

type UpsertAttendanceRequest struct {
	UserID         int64  `json:"userId"`
	CategoryName   string `json:"categoryName"`
	AttendanceDate string `json:"attendanceDate"` // YYYY-MM-DD
}

func (r *UpsertAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	if validator.IsEmpty(r.CategoryName) {
		errs = append(errs, validator.ValidationError{
			Field:   "categoryName",
			Message: "categoryName is required",
		})
	}

	if validator.IsEmpty(r.AttendanceDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendanceDate",
			Message: "attendanceDate is required",
		})
	} else if _, valid := validator.IsValidDate(r.AttendanceDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "attendanceDate",
			Message: "attendanceDate must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DailyQuery struct {
	UserID int64
	Date   string // YYYY-MM-DD
}

func (q *DailyQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.UserID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	if _, valid := validator.IsValidDate(q.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

const (
	minYear = 1
	maxYear = 9999
)

type MonthlyQuery struct {
	UserID int64
	Year   int
	Month  int
}

func (q *MonthlyQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.UserID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	// Dates travel as YYYY-MM-DD, which has no form for other years
	if !validator.IsInRange(q.Year, minYear, maxYear) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1 and 9999",
		})
	}

	if !validator.IsInRange(q.Month, 1, 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
