package user

import (
	"context"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	// Update replaces name, email and goal of an existing user
	Update(ctx context.Context, u User) (User, error)
	UpdateGoal(ctx context.Context, id int64, goalPercentage int) (User, error)
	// Delete removes the user; a missing id is not an error
	Delete(ctx context.Context, id int64) error
}
