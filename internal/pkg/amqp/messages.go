package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

// AttendanceChangedMessage is the body published for every committed attendance change
type AttendanceChangedMessage struct {
	EventID        string    `json:"eventId"`
	Type           string    `json:"type"`
	AttendanceID   int64     `json:"attendanceId"`
	UserID         int64     `json:"userId"`
	CategoryName   string    `json:"categoryName,omitempty"`
	AttendanceDate string    `json:"attendanceDate"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewAttendanceChangedMessage(event attendance.Event) *AttendanceChangedMessage {
	return &AttendanceChangedMessage{
		EventID:        uuid.NewString(),
		Type:           string(event.Type),
		AttendanceID:   event.AttendanceID,
		UserID:         event.UserID,
		CategoryName:   event.CategoryName,
		AttendanceDate: event.Date.Format(validator.DateLayout),
		Timestamp:      time.Now().UTC(),
	}
}

func (m *AttendanceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
