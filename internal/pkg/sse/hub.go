// Package sse fans attendance changes out to browsers listening on a user's event stream.
package sse

import (
	"context"
	"sync"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/validator"
)

const subscriberBuffer = 10

// Event is one server-sent event. Event becomes the SSE event name, Data its JSON payload.
type Event struct {
	UserID int64
	Event  string
	Data   interface{}
}

// ChangePayload is the data of attendance change events
type ChangePayload struct {
	AttendanceID   int64  `json:"attendanceId"`
	UserID         int64  `json:"userId"`
	CategoryName   string `json:"categoryName,omitempty"`
	AttendanceDate string `json:"attendanceDate"`
	Year           int    `json:"year"`
	Month          int    `json:"month"`
}

// Hub manages SSE subscribers per user
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for userID and returns its channel and cleanup function
func (h *Hub) Subscribe(userID int64) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[userID][ch]; !ok {
			return
		}
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}

	return ch, cleanup
}

// Send delivers event to every subscriber of event.UserID.
// Slow subscribers whose buffer is full miss the event.
func (h *Hub) Send(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Publish implements attendance.EventPublisher.
func (h *Hub) Publish(_ context.Context, event attendance.Event) error {
	h.Send(Event{
		UserID: event.UserID,
		Event:  string(event.Type),
		Data: ChangePayload{
			AttendanceID:   event.AttendanceID,
			UserID:         event.UserID,
			CategoryName:   event.CategoryName,
			AttendanceDate: event.Date.Format(validator.DateLayout),
			Year:           event.Date.Year(),
			Month:          int(event.Date.Month()),
		},
	})
	return nil
}

// Close ends every subscription. Streams see their channel closed and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, userID)
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[userID])
}

// TotalSubscribers returns the number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
