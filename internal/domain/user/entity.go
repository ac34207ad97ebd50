package user

import "time"

// DefaultWFOGoalPercentage is applied when a user is stored without a goal.
const DefaultWFOGoalPercentage = 60

type User struct {
	ID                int64
	Name              string
	Email             string
	WFOGoalPercentage int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToResponse maps the entity to its API representation
func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		WFOGoalPercentage: u.WFOGoalPercentage,
	}
}
