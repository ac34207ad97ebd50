// Package memory is an in-process entity store with the same contracts as the
// PostgreSQL repositories. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
)

type dayKey struct {
	userID int64
	date   time.Time
}

type Store struct {
	// txMu serializes transactions; mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex

	now func() time.Time

	users       map[int64]user.User
	categories  map[int64]category.Category
	attendances map[int64]attendance.Attendance
	byDay       map[dayKey]int64

	nextUserID       int64
	nextCategoryID   int64
	nextAttendanceID int64
}

// New returns a store seeded with the canonical categories.
func New() *Store {
	s := &Store{
		now:         time.Now,
		users:       make(map[int64]user.User),
		categories:  make(map[int64]category.Category),
		attendances: make(map[int64]attendance.Attendance),
		byDay:       make(map[dayKey]int64),
	}
	for _, name := range category.CanonicalNames {
		s.AddCategory(name)
	}
	return s
}

// AddCategory inserts a category, returning the existing one when name is taken.
func (s *Store) AddCategory(name string) category.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == name {
			return c
		}
	}
	s.nextCategoryID++
	c := category.Category{ID: s.nextCategoryID, Name: name}
	s.categories[c.ID] = c
	return c
}

// WithinTransaction implements database.Transactor. Transactions run one at a time.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

type txKey struct{}

func (s *Store) Users() user.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) Categories() category.CategoryRepository {
	return &categoryRepository{s: s}
}

func (s *Store) Attendances() attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

// ==================== USERS ====================

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, newUser user.User) (user.User, error) {
	if newUser.WFOGoalPercentage < 0 || newUser.WFOGoalPercentage > 100 {
		return user.User{}, user.ErrInvalidGoalPercentage
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextUserID++
	now := r.s.now()
	newUser.ID = r.s.nextUserID
	newUser.CreatedAt = now
	newUser.UpdatedAt = now
	r.s.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) Update(_ context.Context, u user.User) (user.User, error) {
	if u.WFOGoalPercentage < 0 || u.WFOGoalPercentage > 100 {
		return user.User{}, user.ErrInvalidGoalPercentage
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.WFOGoalPercentage = u.WFOGoalPercentage
	existing.UpdatedAt = r.s.now()
	r.s.users[u.ID] = existing
	return existing, nil
}

func (r *userRepository) UpdateGoal(_ context.Context, id int64, goalPercentage int) (user.User, error) {
	if goalPercentage < 0 || goalPercentage > 100 {
		return user.User{}, user.ErrInvalidGoalPercentage
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	existing.WFOGoalPercentage = goalPercentage
	existing.UpdatedAt = r.s.now()
	r.s.users[id] = existing
	return existing, nil
}

// Delete removes the user and, like the ON DELETE CASCADE in the schema, its attendance.
func (r *userRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, id)
	for attID, att := range r.s.attendances {
		if att.UserID == id {
			delete(r.s.attendances, attID)
			delete(r.s.byDay, dayKey{userID: id, date: att.Date})
		}
	}
	return nil
}

// ==================== CATEGORIES ====================

type categoryRepository struct {
	s *Store
}

func (r *categoryRepository) GetByID(_ context.Context, id int64) (category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return category.Category{}, category.ErrCategoryNotFound
	}
	return c, nil
}

func (r *categoryRepository) GetByName(_ context.Context, name string) (category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return category.Category{}, category.ErrCategoryNotFound
}

func (r *categoryRepository) List(_ context.Context) ([]category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// ==================== ATTENDANCES ====================

type attendanceRepository struct {
	s *Store
}

// joined fills the user and category of att. Callers hold s.mu.
func (r *attendanceRepository) joined(att attendance.Attendance) attendance.Attendance {
	att.User = r.s.users[att.UserID]
	att.Category = r.s.categories[att.CategoryID]
	return att
}

func (r *attendanceRepository) Create(_ context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[newAttendance.UserID]; !ok {
		return attendance.Attendance{}, user.ErrUserNotFound
	}
	if _, ok := r.s.categories[newAttendance.CategoryID]; !ok {
		return attendance.Attendance{}, category.ErrCategoryNotFound
	}

	newAttendance.Date = attendance.DateOnly(newAttendance.Date)
	key := dayKey{userID: newAttendance.UserID, date: newAttendance.Date}
	if _, taken := r.s.byDay[key]; taken {
		return attendance.Attendance{}, attendance.ErrAttendanceConflict
	}

	r.s.nextAttendanceID++
	now := r.s.now()
	newAttendance.ID = r.s.nextAttendanceID
	newAttendance.CreatedAt = now
	newAttendance.UpdatedAt = now
	newAttendance.User = user.User{}
	newAttendance.Category = category.Category{}

	r.s.attendances[newAttendance.ID] = newAttendance
	r.s.byDay[key] = newAttendance.ID
	return newAttendance, nil
}

func (r *attendanceRepository) UpdateCategory(_ context.Context, id int64, categoryID int64) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	att, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if _, ok := r.s.categories[categoryID]; !ok {
		return attendance.Attendance{}, category.ErrCategoryNotFound
	}

	att.CategoryID = categoryID
	att.UpdatedAt = r.s.now()
	r.s.attendances[id] = att
	return att, nil
}

func (r *attendanceRepository) GetByID(_ context.Context, id int64) (attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	att, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.joined(att), nil
}

func (r *attendanceRepository) GetByUserAndDate(_ context.Context, userID int64, date time.Time) (*attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byDay[dayKey{userID: userID, date: attendance.DateOnly(date)}]
	if !ok {
		return nil, nil
	}
	att := r.joined(r.s.attendances[id])
	return &att, nil
}

func (r *attendanceRepository) ListByUserAndDateRange(_ context.Context, userID int64, start, end time.Time) ([]attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	start, end = attendance.DateOnly(start), attendance.DateOnly(end)
	result := make([]attendance.Attendance, 0)
	for _, att := range r.s.attendances {
		if att.UserID == userID && inRange(att.Date, start, end) {
			result = append(result, r.joined(att))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *attendanceRepository) List(_ context.Context) ([]attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]attendance.Attendance, 0, len(r.s.attendances))
	for _, att := range r.s.attendances {
		result = append(result, r.joined(att))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (r *attendanceRepository) CountByCategory(_ context.Context, userID int64, start, end time.Time) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	start, end = attendance.DateOnly(start), attendance.DateOnly(end)
	counts := make(map[string]int)
	for _, att := range r.s.attendances {
		if att.UserID == userID && inRange(att.Date, start, end) {
			counts[r.s.categories[att.CategoryID].Name]++
		}
	}
	return counts, nil
}

func (r *attendanceRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if att, ok := r.s.attendances[id]; ok {
		delete(r.s.attendances, id)
		delete(r.s.byDay, dayKey{userID: att.UserID, date: att.Date})
	}
	return nil
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
