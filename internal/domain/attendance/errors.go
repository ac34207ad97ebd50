package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceConflict = errors.New("attendance for this user and date was recorded concurrently")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
)
