package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Upsert records the category for (user, date), creating or updating the single
	// record for that pair. created reports whether a new record was inserted.
	Upsert(ctx context.Context, req UpsertAttendanceRequest) (resp AttendanceResponse, created bool, err error)

	// GetByUserAndDate retrieves the record of a user on a date
	GetByUserAndDate(ctx context.Context, req DailyQuery) (AttendanceResponse, error)

	// GetMonthly retrieves every record of a user in a month
	GetMonthly(ctx context.Context, req MonthlyQuery) ([]AttendanceResponse, error)

	// GetMonthlyStats computes the WFO statistics of a user in a month
	GetMonthlyStats(ctx context.Context, req MonthlyQuery) (MonthlyStats, error)

	// List retrieves every attendance record
	List(ctx context.Context) ([]AttendanceResponse, error)

	// Delete removes a record by id. Deleting a missing id succeeds.
	Delete(ctx context.Context, id int64) error
}
