package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT
		a.id, a.user_id, a.category_id, a.attendance_date, a.created_at, a.updated_at,
		u.id, u.name, u.email, u.wfo_goal_percentage, u.created_at, u.updated_at,
		c.id, c.name
	FROM attendances a
	JOIN users u ON u.id = a.user_id
	JOIN categories c ON c.id = a.category_id
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.CategoryID, &att.Date, &att.CreatedAt, &att.UpdatedAt,
		&att.User.ID, &att.User.Name, &att.User.Email, &att.User.WFOGoalPercentage,
		&att.User.CreatedAt, &att.User.UpdatedAt,
		&att.Category.ID, &att.Category.Name,
	)
	return att, err
}

func (a *attendanceRepository) queryAll(ctx context.Context, query string, args ...interface{}) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return attendances, nil
}

// mapWriteError translates constraint violations into domain errors
func mapWriteError(err error) error {
	code, constraint := pgErrorCode(err)
	switch code {
	case codeUniqueViolation:
		return attendance.ErrAttendanceConflict
	case codeForeignKeyViolation:
		if strings.Contains(constraint, "user_id") {
			return user.ErrUserNotFound
		}
		return category.ErrCategoryNotFound
	}
	return err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (user_id, category_id, attendance_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	newAttendance.Date = attendance.DateOnly(newAttendance.Date)
	err := q.QueryRow(ctx, query,
		newAttendance.UserID,
		newAttendance.CategoryID,
		newAttendance.Date,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", mapWriteError(err))
	}

	return newAttendance, nil
}

// UpdateCategory implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateCategory(ctx context.Context, id int64, categoryID int64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET category_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, category_id, attendance_date, created_at, updated_at
	`

	var att attendance.Attendance
	err := q.QueryRow(ctx, query, categoryID, id).Scan(
		&att.ID, &att.UserID, &att.CategoryID, &att.Date, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", mapWriteError(err))
	}

	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id int64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := attendanceSelect + `
		WHERE a.user_id = $1
		  AND a.attendance_date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, attendance.DateOnly(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// ListByUserAndDateRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]attendance.Attendance, error) {
	query := attendanceSelect + `
		WHERE a.user_id = $1
		  AND a.attendance_date BETWEEN $2 AND $3
		ORDER BY a.attendance_date ASC
	`

	return a.queryAll(ctx, query, userID, attendance.DateOnly(start), attendance.DateOnly(end))
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context) ([]attendance.Attendance, error) {
	return a.queryAll(ctx, attendanceSelect+` ORDER BY a.attendance_date ASC, a.id ASC`)
}

// CountByCategory implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByCategory(ctx context.Context, userID int64, start, end time.Time) (map[string]int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT c.name, COUNT(*)
		FROM attendances a
		JOIN categories c ON c.id = a.category_id
		WHERE a.user_id = $1
		  AND a.attendance_date BETWEEN $2 AND $3
		GROUP BY c.name
	`

	rows, err := q.Query(ctx, query, userID, attendance.DateOnly(start), attendance.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to count attendances by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[name] = int(count)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	return nil
}
