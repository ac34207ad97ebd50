package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/database"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	user.UserRepository
	category.CategoryRepository
	cache     attendance.StatsCache
	publisher attendance.EventPublisher
}

// Upsert implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Upsert(ctx context.Context, req attendance.UpsertAttendanceRequest) (attendance.AttendanceResponse, bool, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, false, err
	}
	date, _ := validator.IsValidDate(req.AttendanceDate)

	var (
		saved   attendance.Attendance
		created bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.UserRepository.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		cat, err := s.CategoryRepository.GetByName(ctx, req.CategoryName)
		if err != nil {
			return err
		}

		existing, err := s.AttendanceRepository.GetByUserAndDate(ctx, u.ID, date)
		if err != nil {
			return fmt.Errorf("failed to find attendance: %w", err)
		}

		if existing != nil {
			saved, err = s.AttendanceRepository.UpdateCategory(ctx, existing.ID, cat.ID)
			if err != nil {
				return fmt.Errorf("failed to update attendance: %w", err)
			}
		} else {
			saved, err = s.AttendanceRepository.Create(ctx, attendance.Attendance{
				UserID:     u.ID,
				CategoryID: cat.ID,
				Date:       date,
			})
			if err != nil {
				return fmt.Errorf("failed to create attendance: %w", err)
			}
			created = true
		}

		saved.User = u
		saved.Category = cat
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, false, err
	}

	s.afterChange(ctx, attendance.Event{
		Type:         attendance.EventUpserted,
		AttendanceID: saved.ID,
		UserID:       saved.UserID,
		CategoryName: saved.Category.Name,
		Date:         saved.Date,
	})

	return saved.ToResponse(), created, nil
}

// GetByUserAndDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetByUserAndDate(ctx context.Context, req attendance.DailyQuery) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	if _, err := s.UserRepository.GetByID(ctx, req.UserID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	att, err := s.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if att == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	return att.ToResponse(), nil
}

// GetMonthly implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthly(ctx context.Context, req attendance.MonthlyQuery) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.UserRepository.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	start, end, err := attendance.MonthRange(req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	records, err := s.AttendanceRepository.ListByUserAndDateRange(ctx, req.UserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly attendance: %w", err)
	}

	return attendance.ToResponses(records), nil
}

// GetMonthlyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyStats(ctx context.Context, req attendance.MonthlyQuery) (attendance.MonthlyStats, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyStats{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.MonthlyStats{}, err
	}

	// The generation is read before the rows so a concurrent invalidation
	// leaves whatever this call caches unreachable.
	generation, err := s.cache.Generation(ctx, u.ID)
	cacheable := err == nil
	if err != nil {
		slog.WarnContext(ctx, "Stats cache generation read failed", "user_id", u.ID, "error", err)
	} else if cached, err := s.cache.Get(ctx, u.ID, generation, req.Year, req.Month); err != nil {
		slog.WarnContext(ctx, "Stats cache read failed", "user_id", u.ID, "error", err)
	} else if cached != nil {
		return *cached, nil
	}

	start, end, err := attendance.MonthRange(req.Year, req.Month)
	if err != nil {
		return attendance.MonthlyStats{}, err
	}

	counts, err := s.AttendanceRepository.CountByCategory(ctx, u.ID, start, end)
	if err != nil {
		return attendance.MonthlyStats{}, fmt.Errorf("failed to count attendance: %w", err)
	}

	if untracked := attendance.UntrackedCategories(counts); len(untracked) > 0 {
		slog.WarnContext(ctx, "Ignoring untracked categories in monthly stats",
			"user_id", u.ID,
			"year", req.Year,
			"month", req.Month,
			"categories", untracked)
	}

	stats := attendance.ComputeMonthlyStats(req.Year, req.Month, u.WFOGoalPercentage, counts)
	stats.UserID = u.ID

	if cacheable {
		if err := s.cache.Set(ctx, u.ID, generation, stats); err != nil {
			slog.WarnContext(ctx, "Stats cache write failed", "user_id", u.ID, "error", err)
		}
	}

	return stats, nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	records, err := s.AttendanceRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.ToResponses(records), nil
}

// Delete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validator.ValidationErrors{{Field: "id", Message: "id must be a positive number"}}
	}

	var deleted *attendance.Attendance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return nil
			}
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		deleted = &existing
		return nil
	})
	if err != nil {
		return err
	}

	if deleted == nil {
		slog.DebugContext(ctx, "Delete of missing attendance ignored", "attendance_id", id)
		return nil
	}

	s.afterChange(ctx, attendance.Event{
		Type:         attendance.EventDeleted,
		AttendanceID: deleted.ID,
		UserID:       deleted.UserID,
		CategoryName: deleted.Category.Name,
		Date:         deleted.Date,
	})

	return nil
}

// afterChange runs the post-commit side effects. Failures are logged only.
func (s *AttendanceServiceImpl) afterChange(ctx context.Context, event attendance.Event) {
	year, month := event.Date.Year(), int(event.Date.Month())
	if err := s.cache.InvalidateMonth(ctx, event.UserID, year, month); err != nil {
		slog.WarnContext(ctx, "Stats cache invalidation failed",
			"user_id", event.UserID,
			"year", year,
			"month", month,
			"error", err)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish attendance event",
			"type", event.Type,
			"attendance_id", event.AttendanceID,
			"error", err)
	}
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	categoryRepo category.CategoryRepository,
	cache attendance.StatsCache,
	publisher attendance.EventPublisher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		UserRepository:       userRepo,
		CategoryRepository:   categoryRepo,
		cache:                cache,
		publisher:            publisher,
	}
}
