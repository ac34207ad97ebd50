package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/amqp"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/cache"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/sse"
	"github.com/wfo-tracker/attendance-backend-go/internal/repository/memory"
	attendanceService "github.com/wfo-tracker/attendance-backend-go/internal/service/attendance"
	categoryService "github.com/wfo-tracker/attendance-backend-go/internal/service/category"
	userService "github.com/wfo-tracker/attendance-backend-go/internal/service/user"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestRouterWithHub(t)
	return h
}

func newTestRouterWithHub(t *testing.T) (http.Handler, *sse.Hub) {
	t.Helper()

	store := memory.New()
	statsCache := cache.NewNoopStatsCache()
	hub := sse.NewHub()
	users := userService.NewUserService(store.Users(), statsCache)

	logger := NewLogger(io.Discard, slog.LevelError, "wfo-attendance", "test", "test")

	return NewRouter(
		logger,
		[]string{"http://localhost:3000"},
		NewAttendanceHandler(attendanceService.NewAttendanceService(
			store,
			store.Attendances(),
			store.Users(),
			store.Categories(),
			statsCache,
			attendance.Publishers{hub, amqp.NewNoopPublisher()},
		)),
		NewUserHandler(users),
		NewCategoryHandler(categoryService.NewCategoryService(store.Categories())),
		NewEventsHandler(users, hub),
	), hub
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createUser(t *testing.T, h http.Handler, name, email string) int64 {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/user", map[string]interface{}{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var u struct {
		ID                int64 `json:"id"`
		WFOGoalPercentage int   `json:"wfoGoalPercentage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, 60, u.WFOGoalPercentage)
	assert.Equal(t, "/api/user/"+itoa(u.ID), rec.Header().Get("Location"))
	return u.ID
}

func TestRouter_Heartbeat(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendanceHandler_UpsertCreatedThenUpdated(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Ana", "ana@example.com")

	body := map[string]interface{}{"userId": userID, "categoryName": "WFO", "attendanceDate": "2024-03-04"}
	rec, env := do(t, h, http.MethodPost, "/api/attendance", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var created struct {
		ID             int64  `json:"id"`
		AttendanceDate string `json:"attendanceDate"`
		Category       struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "2024-03-04", created.AttendanceDate)
	assert.Equal(t, "/api/attendance/"+itoa(created.ID), rec.Header().Get("Location"))

	body["categoryName"] = "WFH"
	rec, env = do(t, h, http.MethodPost, "/api/attendance", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Location"))

	var updated struct {
		ID       int64 `json:"id"`
		Category struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "WFH", updated.Category.Name)

	rec, env = do(t, h, http.MethodGet, "/api/attendances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
}

func TestAttendanceHandler_UpsertErrors(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Ben", "ben@example.com")

	rec, env := do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": 999, "categoryName": "WFO", "attendanceDate": "2024-03-04"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User not found", env.Error.Message)

	rec, env = do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": userID, "categoryName": "Holiday", "attendanceDate": "2024-03-04"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Category not found", env.Error.Message)

	rec, env = do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": userID, "categoryName": "WFO", "attendanceDate": "04/03/2024"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "attendanceDate")

	req := httptest.NewRequest(http.MethodPost, "/api/attendance", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAttendanceHandler_GetByUserAndDate(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Cy", "cy@example.com")

	rec, env := do(t, h, http.MethodGet, "/api/attendance?userId="+itoa(userID)+"&date=2024-02-29", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Attendance not found", env.Error.Message)

	do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": userID, "categoryName": "Absence", "attendanceDate": "2024-02-29"})

	rec, _ = do(t, h, http.MethodGet, "/api/attendance?userId="+itoa(userID)+"&date=2024-02-29", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/attendance?userId=abc&date=2024-02-29", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "userId")
}

func TestAttendanceHandler_MonthlyAndStats(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Di", "di@example.com")

	for _, date := range []string{"2024-04-01", "2024-04-02", "2024-04-03"} {
		rec, _ := do(t, h, http.MethodPost, "/api/attendance",
			map[string]interface{}{"userId": userID, "categoryName": "WFO", "attendanceDate": date})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": userID, "categoryName": "Absence", "attendanceDate": "2024-04-04"})

	rec, env := do(t, h, http.MethodGet, "/api/attendance/monthly?userId="+itoa(userID)+"&year=2024&month=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []struct {
		AttendanceDate string `json:"attendanceDate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 4)
	assert.Equal(t, "2024-04-01", records[0].AttendanceDate)

	rec, env = do(t, h, http.MethodGet, "/api/attendance/monthly/stats?userId="+itoa(userID)+"&year=2024&month=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 30, stats["totalDays"])
	assert.EqualValues(t, 3, stats["wfoCount"])
	assert.EqualValues(t, 1, stats["absenceCount"])
	assert.EqualValues(t, 4, stats["totalRecorded"])
	// 3 * 100 / 29 = 10.344...
	assert.EqualValues(t, 10.34, stats["achievedPercentage"])
	// ceil(29 * 0.6) = ceil(17.4)
	assert.EqualValues(t, 18, stats["requiredWfoDays"])
	assert.EqualValues(t, 15, stats["remainingWfoDays"])

	rec, env = do(t, h, http.MethodGet, "/api/attendance/monthly/stats?userId="+itoa(userID)+"&year=2024&month=13", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "month must be between 1 and 12", env.Error.Details["month"])

	rec, _ = do(t, h, http.MethodGet, "/api/attendance/monthly/stats?userId="+itoa(userID)+"&year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandler_DeleteIsIdempotent(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Ed", "ed@example.com")

	_, env := do(t, h, http.MethodPost, "/api/attendance",
		map[string]interface{}{"userId": userID, "categoryName": "WFO", "attendanceDate": "2024-05-06"})
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, _ := do(t, h, http.MethodDelete, "/api/attendance/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/api/attendance/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/attendance/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_CRUD(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "Flo", "flo@example.com")

	rec, env := do(t, h, http.MethodPatch, "/api/user/"+itoa(userID)+"/goal?goalPercentage=75", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var u map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.EqualValues(t, 75, u["wfoGoalPercentage"])

	rec, _ = do(t, h, http.MethodPatch, "/api/user/"+itoa(userID)+"/goal?goalPercentage=150", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/api/user/"+itoa(userID),
		map[string]interface{}{"name": "Florence", "email": "florence@example.com", "wfoGoalPercentage": 40})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/user/"+itoa(userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "Florence", u["name"])

	rec, env = do(t, h, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 1)

	rec, _ = do(t, h, http.MethodDelete, "/api/user/"+itoa(userID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/user/"+itoa(userID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User not found", env.Error.Message)
}

func TestCategoryHandler(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.Len(t, categories, 3)

	rec, _ = do(t, h, http.MethodGet, "/api/category/"+itoa(categories[0].ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/category/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Category not found", env.Error.Message)
}

func TestEventsHandler_StreamsAttendanceChanges(t *testing.T) {
	h, hub := newTestRouterWithHub(t)
	userID := createUser(t, h, "Ana", "ana@example.com")

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/user/"+itoa(userID)+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, _ := readEvent(t, reader)
	require.Equal(t, "connected", name)
	assert.Equal(t, 1, hub.SubscriberCount(userID))

	rec, _ := do(t, h, http.MethodPost, "/api/attendance", map[string]interface{}{
		"userId": userID, "categoryName": "WFO", "attendanceDate": "2024-03-04",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	name, data := readEvent(t, reader)
	assert.Equal(t, "attendance.upserted", name)

	var payload sse.ChangePayload
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, "WFO", payload.CategoryName)
	assert.Equal(t, "2024-03-04", payload.AttendanceDate)
	assert.Equal(t, 3, payload.Month)

	cancel()
	assert.Eventually(t, func() bool { return hub.TotalSubscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEventsHandler_UnknownUser(t *testing.T) {
	h := newTestRouter(t)
	rec, env := do(t, h, http.MethodGet, "/api/user/999/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "User not found", env.Error.Message)
}

// readEvent reads one server-sent event and returns its name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
