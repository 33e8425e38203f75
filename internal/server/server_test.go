package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/daybook/internal/agenda"
	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/config"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := calendar.NewFixedClock(time.UTC, time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	cfg := config.DefaultConfig()
	cfg.TouchMode = true
	cfg.Debug = true
	return New(agenda.NewService(db, clock), cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func createEveryOtherDay(t *testing.T, h http.Handler) models.Template {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/templates", map[string]any{
		"title":       "Gym",
		"anchor_date": "2026-01-01",
		"pattern":     map[string]any{"kind": "every_n_days", "interval": 2},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create template status = %d, body %s", w.Code, w.Body.String())
	}
	return decode[models.Template](t, w)
}

func TestHealthAndRequestID(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}

func TestConfigEndpoint(t *testing.T) {
	h := setupTestServer(t)
	w := do(t, h, http.MethodGet, "/api/v1/config", nil)
	got := decode[configResponse](t, w)
	if !got.TouchMode || got.Timezone != "UTC" || got.Today != "2026-01-10" {
		t.Errorf("config = %+v", got)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	h := setupTestServer(t)
	tpl := createEveryOtherDay(t, h)

	w := do(t, h, http.MethodGet, "/api/v1/templates/"+tpl.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get template status = %d", w.Code)
	}

	w = do(t, h, http.MethodPatch, "/api/v1/templates/"+tpl.ID, map[string]any{"title": "Gym session"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[models.Template](t, w); got.Title != "Gym session" {
		t.Errorf("patched title = %q", got.Title)
	}

	w = do(t, h, http.MethodPost, "/api/v1/templates/"+tpl.ID+"/exceptions/2026-01-05", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add exception status = %d, body %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/v1/templates/"+tpl.ID+"/exceptions/2026-01-04", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("exception off pattern status = %d, want 422", w.Code)
	}
	w = do(t, h, http.MethodDelete, "/api/v1/templates/"+tpl.ID+"/exceptions/2026-01-05", nil)
	if w.Code != http.StatusOK {
		t.Errorf("remove exception status = %d", w.Code)
	}

	w = do(t, h, http.MethodDelete, "/api/v1/templates/"+tpl.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("retire status = %d", w.Code)
	}
	if got := decode[models.Template](t, w); got.RetiredAt == nil {
		t.Error("retired template has no retired_at")
	}

	active := decode[[]models.Template](t, do(t, h, http.MethodGet, "/api/v1/templates", nil))
	all := decode[[]models.Template](t, do(t, h, http.MethodGet, "/api/v1/templates?retired=true", nil))
	if len(active) != 0 || len(all) != 1 {
		t.Errorf("active = %d, all = %d; want 0 and 1", len(active), len(all))
	}
}

func TestTemplateHistoryEndpoint(t *testing.T) {
	h := setupTestServer(t)
	tpl := createEveryOtherDay(t, h)

	for day, status := range map[string]string{"2026-01-03": "done", "2026-01-07": "skipped"} {
		w := do(t, h, http.MethodPut, "/api/v1/templates/"+tpl.ID+"/occurrences/"+day+"/status", map[string]string{"status": status})
		if w.Code != http.StatusOK {
			t.Fatalf("set status = %d, body %s", w.Code, w.Body.String())
		}
	}

	w := do(t, h, http.MethodGet, "/api/v1/templates/"+tpl.ID+"/occurrences", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[[]models.Occurrence](t, w); len(got) != 2 || got[0].Status != "done" || got[1].Status != "skipped" {
		t.Errorf("default history = %+v", got)
	}

	w = do(t, h, http.MethodGet, "/api/v1/templates/"+tpl.ID+"/occurrences?from=2026-01-04&to=2026-01-07", nil)
	if got := decode[[]models.Occurrence](t, w); len(got) != 1 || got[0].Date.String() != "2026-01-07" {
		t.Errorf("windowed history = %+v", got)
	}

	w = do(t, h, http.MethodGet, "/api/v1/templates/"+tpl.ID+"/occurrences?from=2026-01-08&to=2026-01-09", nil)
	if got := decode[[]models.Occurrence](t, w); got == nil || len(got) != 0 {
		t.Errorf("empty history = %s, want []", w.Body.String())
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/templates/nope/occurrences", http.StatusNotFound},
		{"/api/v1/templates/" + tpl.ID + "/occurrences?from=2026-01-09&to=2026-01-01", http.StatusBadRequest},
		{"/api/v1/templates/" + tpl.ID + "/occurrences?from=yesterday", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := do(t, h, http.MethodGet, tt.path, nil); w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	h := setupTestServer(t)
	tpl := createEveryOtherDay(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad template", http.MethodPost, "/api/v1/templates", map[string]any{
			"title": "Bad", "anchor_date": "2026-01-01", "pattern": map[string]any{"kind": "every_n_days"},
		}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/v1/templates", "not an object", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/v1/days/2026-13-01", nil, http.StatusBadRequest},
		{"bad month", http.MethodGet, "/api/v1/months/2026/13", nil, http.StatusBadRequest},
		{"unknown template", http.MethodGet, "/api/v1/templates/nope", nil, http.StatusNotFound},
		{"status off pattern", http.MethodPut, "/api/v1/templates/" + tpl.ID + "/occurrences/2026-01-04/status",
			map[string]string{"status": "done"}, http.StatusUnprocessableEntity},
		{"unknown status", http.MethodPut, "/api/v1/templates/" + tpl.ID + "/occurrences/2026-01-03/status",
			map[string]string{"status": "finished"}, http.StatusBadRequest},
		{"missing status", http.MethodPut, "/api/v1/templates/" + tpl.ID + "/occurrences/2026-01-03/status",
			map[string]string{}, http.StatusBadRequest},
		{"status unknown template", http.MethodPut, "/api/v1/templates/nope/occurrences/2026-01-03/status",
			map[string]string{"status": "done"}, http.StatusNotFound},
		{"unknown todo", http.MethodDelete, "/api/v1/todos/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if got := decode[map[string]string](t, w); got["error"] == "" {
				t.Errorf("missing error message in %s", w.Body.String())
			}
		})
	}
}

func TestDayAndMonth(t *testing.T) {
	h := setupTestServer(t)
	tpl := createEveryOtherDay(t, h)

	w := do(t, h, http.MethodPut, "/api/v1/templates/"+tpl.ID+"/occurrences/2026-01-03/status", map[string]string{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, body %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPut, "/api/v1/templates/"+tpl.ID+"/occurrences/2026-01-03/title", map[string]string{"title": "Leg day"})
	if w.Code != http.StatusOK {
		t.Fatalf("set title = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/v1/todos", map[string]string{"title": "Stretch", "due_date": "2026-01-03"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create todo = %d, body %s", w.Code, w.Body.String())
	}

	day := decode[models.DailyList](t, do(t, h, http.MethodGet, "/api/v1/days/2026-01-03", nil))
	if len(day.Items) != 2 {
		t.Fatalf("day items = %+v", day.Items)
	}
	if day.Items[0].Title != "Stretch" || day.Items[1].Title != "Leg day" || day.Items[1].Status != "done" {
		t.Errorf("day order = %+v", day.Items)
	}

	w = do(t, h, http.MethodGet, "/api/v1/months/2026/1", nil)
	var month struct {
		Days map[string]models.DaySummary `json:"days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &month); err != nil {
		t.Fatalf("failed to decode month: %v", err)
	}
	if len(month.Days) != 31 {
		t.Errorf("month has %d days", len(month.Days))
	}
	if got := month.Days["2026-01-03"]; got.Done != 1 || got.TodoPending != 1 {
		t.Errorf("Jan 3 summary = %+v", got)
	}
	if got := month.Days["2026-01-05"]; got.Pending != 1 {
		t.Errorf("Jan 5 summary = %+v", got)
	}
}

func TestTodoEndpoints(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodPost, "/api/v1/todos", map[string]string{"title": "Call"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create todo = %d", w.Code)
	}
	todo := decode[models.Todo](t, w)
	if todo.DueDate.String() != "2026-01-10" {
		t.Errorf("default due = %s", todo.DueDate)
	}

	w = do(t, h, http.MethodPut, "/api/v1/todos/"+todo.ID+"/status", map[string]string{"status": "done"})
	if got := decode[models.Todo](t, w); got.Status != "done" || got.CompletedAt == nil {
		t.Errorf("done todo = %+v", got)
	}

	w = do(t, h, http.MethodDelete, "/api/v1/todos/"+todo.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete todo = %d", w.Code)
	}
}

func TestUpcomingAndCalendar(t *testing.T) {
	h := setupTestServer(t)
	createEveryOtherDay(t, h)

	w := do(t, h, http.MethodGet, "/api/v1/upcoming?days=7", nil)
	up := decode[[]models.Upcoming](t, w)
	if len(up) != 1 || len(up[0].Dates) != 3 {
		t.Errorf("upcoming = %+v", up)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/upcoming?days=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("upcoming days=0 status = %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/v1/calendar.ics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("calendar status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "FREQ=DAILY;INTERVAL=2"} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar missing %q", want)
		}
	}
}
