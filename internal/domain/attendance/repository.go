package attendance

import (
	"context"
	"errors"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Read methods return rows joined with their user and category.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// UpdateCategory replaces the category of an existing record
	UpdateCategory(ctx context.Context, id int64, categoryID int64) (Attendance, error)

	GetByID(ctx context.Context, id int64) (Attendance, error)

	// GetByUserAndDate returns nil, nil when the user has no record on date
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Attendance, error)

	// ListByUserAndDateRange returns records with start <= date <= end ordered by date
	ListByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]Attendance, error)

	List(ctx context.Context) ([]Attendance, error)

	// CountByCategory counts the user's records in [start, end] grouped by category name.
	// Categories without records are absent from the result.
	CountByCategory(ctx context.Context, userID int64, start, end time.Time) (map[string]int, error)

	// Delete removes the record; a missing id is not an error
	Delete(ctx context.Context, id int64) error
}

// StatsCache stores computed monthly statistics under a per-user generation.
// Both invalidations advance the generation, so stats computed from rows read
// under an older generation are never served once an invalidation has run.
// Get returns nil, nil on a miss.
type StatsCache interface {
	Generation(ctx context.Context, userID int64) (int64, error)
	Get(ctx context.Context, userID, generation int64, year, month int) (*MonthlyStats, error)
	Set(ctx context.Context, userID, generation int64, stats MonthlyStats) error
	InvalidateMonth(ctx context.Context, userID int64, year, month int) error
	InvalidateUser(ctx context.Context, userID int64) error
}

type EventType string

const (
	EventUpserted EventType = "attendance.upserted"
	EventDeleted  EventType = "attendance.deleted"
)

// Event describes a committed change to an attendance record
type Event struct {
	Type         EventType
	AttendanceID int64
	UserID       int64
	CategoryName string
	Date         time.Time
}

// EventPublisher announces committed attendance changes to other systems
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Publishers fans an event out to every publisher and joins their errors
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, pub := range p {
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
