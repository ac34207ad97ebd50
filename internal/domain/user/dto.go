package user

import (
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	WFOGoalPercentage int    `json:"wfoGoalPercentage"`
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	WFOGoalPercentage *int   `json:"wfoGoalPercentage,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	errs := validateProfile(r.Name, r.Email, r.WFOGoalPercentage)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateUserRequest replaces every mutable field of a user.
// A missing goal resets it to DefaultWFOGoalPercentage.
type UpdateUserRequest struct {
	ID                int64  `json:"-"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	WFOGoalPercentage *int   `json:"wfoGoalPercentage,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	errs := validateProfile(r.Name, r.Email, r.WFOGoalPercentage)

	if r.ID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a positive number",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateGoalRequest represents request to change only the WFO goal
type UpdateGoalRequest struct {
	ID             int64
	GoalPercentage int
}

func (r *UpdateGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a positive number",
		})
	}

	if !validator.IsInRange(r.GoalPercentage, 0, 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "goalPercentage",
			Message: "goalPercentage must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// GoalOrDefault returns the requested goal, or the default when none was sent
func GoalOrDefault(goal *int) int {
	if goal == nil {
		return DefaultWFOGoalPercentage
	}
	return *goal
}

func validateProfile(name, email string, goal *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if goal != nil && !validator.IsInRange(*goal, 0, 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "wfoGoalPercentage",
			Message: "wfoGoalPercentage must be between 0 and 100",
		})
	}

	return errs
}
