package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	"github.com/wfo-tracker/attendance-backend-go/internal/handler/http/response"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	userService user.UserService
	hub         *sse.Hub
}

func NewEventsHandler(userService user.UserService, hub *sse.Hub) EventsHandler {
	return &eventsHandlerImpl{
		userService: userService,
		hub:         hub,
	}
}

// Stream sends the user's attendance changes as server-sent events until the client leaves.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	if _, err := h.userService.Get(r.Context(), id); err != nil {
		response.HandleError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.DebugContext(r.Context(), "Cannot clear write deadline for event stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(id)
	slog.InfoContext(r.Context(), "Event stream opened",
		"user_id", id,
		"user_streams", h.hub.SubscriberCount(id),
		"total_streams", h.hub.TotalSubscribers())
	defer func() {
		cleanup()
		slog.InfoContext(r.Context(), "Event stream closed",
			"user_id", id,
			"total_streams", h.hub.TotalSubscribers())
	}()

	fmt.Fprintf(w, "event: connected\ndata: {\"userId\":%d}\n\n", id)
	if err := rc.Flush(); err != nil {
		slog.ErrorContext(r.Context(), "Streaming not supported", "error", err)
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			if err := rc.Flush(); err != nil {
				return
			}

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
