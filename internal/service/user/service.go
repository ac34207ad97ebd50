package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

type UserServiceImpl struct {
	user.UserRepository
	cache attendance.StatsCache
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.TrimSpace(req.Email),
		WFOGoalPercentage: user.GoalOrDefault(req.WFOGoalPercentage),
	})
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return created.ToResponse(), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	updated, err := s.UserRepository.Update(ctx, user.User{
		ID:                req.ID,
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.TrimSpace(req.Email),
		WFOGoalPercentage: user.GoalOrDefault(req.WFOGoalPercentage),
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	s.invalidateStats(ctx, updated.ID)
	return updated.ToResponse(), nil
}

// UpdateGoal implements user.UserService.
func (s *UserServiceImpl) UpdateGoal(ctx context.Context, req user.UpdateGoalRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	updated, err := s.UserRepository.UpdateGoal(ctx, req.ID, req.GoalPercentage)
	if err != nil {
		return user.UserResponse{}, err
	}

	s.invalidateStats(ctx, updated.ID)
	return updated.ToResponse(), nil
}

// Delete implements user.UserService. Deleting a missing user succeeds.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validator.ValidationErrors{{Field: "id", Message: "id must be a positive number"}}
	}

	if err := s.UserRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidateStats(ctx, id)
	return nil
}

// invalidateStats drops every cached month of the user; stats depend on the goal.
func (s *UserServiceImpl) invalidateStats(ctx context.Context, userID int64) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		slog.WarnContext(ctx, "Stats cache invalidation failed", "user_id", userID, "error", err)
	}
}

func NewUserService(userRepo user.UserRepository, cache attendance.StatsCache) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepo,
		cache:          cache,
	}
}
