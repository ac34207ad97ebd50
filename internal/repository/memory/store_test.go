package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_SeedsCanonicalCategories(t *testing.T) {
	s := New()

	categories, err := s.Categories().List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, category.NameWFO, categories[0].Name)
	assert.Equal(t, category.NameWFH, categories[1].Name)
	assert.Equal(t, category.NameAbsence, categories[2].Name)

	again := s.AddCategory(category.NameWFO)
	assert.Equal(t, categories[0].ID, again.ID)
}

func TestAttendanceRepository_UniquePerUserAndDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.Users().Create(ctx, user.User{Name: "Ana", Email: "ana@example.com", WFOGoalPercentage: 60})
	require.NoError(t, err)
	wfo, err := s.Categories().GetByName(ctx, category.NameWFO)
	require.NoError(t, err)

	created, err := s.Attendances().Create(ctx, attendance.Attendance{
		UserID: u.ID, CategoryID: wfo.ID, Date: time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 4), created.Date)

	_, err = s.Attendances().Create(ctx, attendance.Attendance{UserID: u.ID, CategoryID: wfo.ID, Date: day(2024, 3, 4)})
	assert.ErrorIs(t, err, attendance.ErrAttendanceConflict)

	found, err := s.Attendances().GetByUserAndDate(ctx, u.ID, day(2024, 3, 4))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Ana", found.User.Name)
	assert.Equal(t, category.NameWFO, found.Category.Name)

	missing, err := s.Attendances().GetByUserAndDate(ctx, u.ID, day(2024, 3, 5))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttendanceRepository_CreateRejectsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Attendances().Create(ctx, attendance.Attendance{UserID: 99, CategoryID: 1, Date: day(2024, 1, 1)})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	u, err := s.Users().Create(ctx, user.User{Name: "Ben", Email: "ben@example.com"})
	require.NoError(t, err)
	_, err = s.Attendances().Create(ctx, attendance.Attendance{UserID: u.ID, CategoryID: 99, Date: day(2024, 1, 1)})
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}

func TestAttendanceRepository_RangeAndCounts(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.Users().Create(ctx, user.User{Name: "Cy", Email: "cy@example.com", WFOGoalPercentage: 60})
	require.NoError(t, err)
	other, err := s.Users().Create(ctx, user.User{Name: "Di", Email: "di@example.com", WFOGoalPercentage: 60})
	require.NoError(t, err)

	wfo, _ := s.Categories().GetByName(ctx, category.NameWFO)
	wfh, _ := s.Categories().GetByName(ctx, category.NameWFH)

	records := []attendance.Attendance{
		{UserID: u.ID, CategoryID: wfh.ID, Date: day(2024, 2, 29)},
		{UserID: u.ID, CategoryID: wfo.ID, Date: day(2024, 2, 1)},
		{UserID: u.ID, CategoryID: wfo.ID, Date: day(2024, 2, 2)},
		{UserID: u.ID, CategoryID: wfo.ID, Date: day(2024, 3, 1)},
		{UserID: other.ID, CategoryID: wfo.ID, Date: day(2024, 2, 3)},
	}
	for _, rec := range records {
		_, err := s.Attendances().Create(ctx, rec)
		require.NoError(t, err)
	}

	month, err := s.Attendances().ListByUserAndDateRange(ctx, u.ID, day(2024, 2, 1), day(2024, 2, 29))
	require.NoError(t, err)
	require.Len(t, month, 3)
	assert.Equal(t, day(2024, 2, 1), month[0].Date)
	assert.Equal(t, day(2024, 2, 29), month[2].Date)

	counts, err := s.Attendances().CountByCategory(ctx, u.ID, day(2024, 2, 1), day(2024, 2, 29))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{category.NameWFO: 2, category.NameWFH: 1}, counts)

	all, err := s.Attendances().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestAttendanceRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, _ := s.Users().Create(ctx, user.User{Name: "Ed", Email: "ed@example.com"})
	att, err := s.Attendances().Create(ctx, attendance.Attendance{UserID: u.ID, CategoryID: 1, Date: day(2024, 5, 6)})
	require.NoError(t, err)

	require.NoError(t, s.Attendances().Delete(ctx, att.ID))
	require.NoError(t, s.Attendances().Delete(ctx, att.ID))

	_, err = s.Attendances().GetByID(ctx, att.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	// the date is free again
	_, err = s.Attendances().Create(ctx, attendance.Attendance{UserID: u.ID, CategoryID: 2, Date: day(2024, 5, 6)})
	assert.NoError(t, err)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, _ := s.Users().Create(ctx, user.User{Name: "Flo", Email: "flo@example.com"})
	_, err := s.Attendances().Create(ctx, attendance.Attendance{UserID: u.ID, CategoryID: 1, Date: day(2024, 5, 6)})
	require.NoError(t, err)

	require.NoError(t, s.Users().Delete(ctx, u.ID))

	_, err = s.Users().GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	all, err := s.Attendances().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserRepository_UpdateGoal(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, _ := s.Users().Create(ctx, user.User{Name: "Gus", Email: "gus@example.com", WFOGoalPercentage: 60})

	updated, err := s.Users().UpdateGoal(ctx, u.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, updated.WFOGoalPercentage)

	_, err = s.Users().UpdateGoal(ctx, u.ID, 101)
	assert.ErrorIs(t, err, user.ErrInvalidGoalPercentage)

	_, err = s.Users().UpdateGoal(ctx, 42, 50)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestStore_WithinTransactionNests(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	calls := 0
	err := s.WithinTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			calls++
			return boom
		})
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
