package user

import "context"

// UserService is pass-through CRUD over UserRepository
type UserService interface {
	List(ctx context.Context) ([]UserResponse, error)
	Get(ctx context.Context, id int64) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	// UpdateGoal changes only the WFO goal percentage
	UpdateGoal(ctx context.Context, req UpdateGoalRequest) (UserResponse, error)
	Delete(ctx context.Context, id int64) error
}
