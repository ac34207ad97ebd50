package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidGoalPercentage = errors.New("wfo goal percentage must be between 0 and 100")
)
