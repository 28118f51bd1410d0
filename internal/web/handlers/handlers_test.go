package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/saltyorg/schedulr/internal/auth"
	"github.com/saltyorg/schedulr/internal/database"
	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/schedules"
)

func newTestDB(t *testing.T, schema database.Schema) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), schema.Name+".db"), schema)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewAuthHandlers(auth.NewAuthService(newTestDB(t, database.AuthSchema), bcrypt.MinCost)).Routes(r)
	return r
}

func newScheduleRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewScheduleHandlers(schedules.NewService(newTestDB(t, database.ScheduleSchema), "dummy_user")).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := decode[errs.HTTPError](t, rec); got.Message != message {
		t.Fatalf("expected message %q, got %q", message, got.Message)
	}
}

func TestRegister(t *testing.T) {
	h := newAuthRouter(t)

	rec := do(t, h, http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`)
	expectStatus(t, rec, http.StatusCreated)
	if got := decode[map[string]string](t, rec); got["message"] != "User registered successfully" {
		t.Fatalf("unexpected body: %v", got)
	}

	rec = do(t, h, http.MethodPost, "/register", `{"username": "alice", "password": "other"}`)
	expectError(t, rec, http.StatusConflict, "Username already exists")
}

func TestRegister_Invalid(t *testing.T) {
	h := newAuthRouter(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing password", `{"username": "alice"}`, msgCredentialsRequired},
		{"empty username", `{"username": "", "password": "pw"}`, msgCredentialsRequired},
		{"empty object", `{}`, msgCredentialsRequired},
		{"malformed json", `{"username":`, "Invalid JSON body"},
		{"empty body", ``, "Invalid JSON body"},
		{"trailing data", `{"username": "a", "password": "b"} junk`, "Invalid JSON body"},
		{"password too long", `{"username": "bob", "password": "` + strings.Repeat("x", 73) + `"}`, "Password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(t, h, http.MethodPost, "/register", tt.body), http.StatusBadRequest, tt.message)
		})
	}
}

func TestLogin(t *testing.T) {
	h := newAuthRouter(t)
	expectStatus(t, do(t, h, http.MethodPost, "/register", `{"username": "alice", "password": "pw1"}`), http.StatusCreated)

	rec := do(t, h, http.MethodPost, "/login", `{"username": "alice", "password": "pw1"}`)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec); got["access_token"] != auth.PlaceholderAccessToken {
		t.Fatalf("unexpected body: %v", got)
	}

	expectError(t, do(t, h, http.MethodPost, "/login", `{"username": "alice", "password": "wrong"}`), http.StatusUnauthorized, "Invalid credentials")
	expectError(t, do(t, h, http.MethodPost, "/login", `{"username": "ghost", "password": "pw1"}`), http.StatusUnauthorized, "Invalid credentials")
	expectError(t, do(t, h, http.MethodPost, "/login", `{"username": "alice"}`), http.StatusBadRequest, msgCredentialsRequired)
}

func TestScheduleLifecycle(t *testing.T) {
	h := newScheduleRouter(t)

	rec := do(t, h, http.MethodGet, "/schedules", "")
	expectStatus(t, rec, http.StatusOK)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty list, got %s", got)
	}

	rec = do(t, h, http.MethodPost, "/schedules", `{"title": "Dentist", "due_date": "2026-11-02"}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[createdResponse](t, rec)
	if created.Message != "Schedule added successfully" || created.ID == 0 {
		t.Fatalf("unexpected create response: %+v", created)
	}
	path := "/schedules/" + itoa(created.ID)

	rec = do(t, h, http.MethodGet, path, "")
	expectStatus(t, rec, http.StatusOK)
	got := decode[schedules.Schedule](t, rec)
	if got.Title != "Dentist" || got.UserID != "dummy_user" || *got.Priority != "medium" || *got.Recurring != "none" {
		t.Fatalf("unexpected schedule: %+v", got)
	}
	if got.Description != nil || got.Completed {
		t.Fatalf("unexpected optional values: %+v", got)
	}

	rec = do(t, h, http.MethodPut, path, `{"completed": true, "due_date": null}`)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[map[string]string](t, rec)["message"]; msg != "Schedule updated successfully" {
		t.Fatalf("unexpected update message: %q", msg)
	}

	got = decode[schedules.Schedule](t, do(t, h, http.MethodGet, path, ""))
	if !got.Completed || got.DueDate != nil || got.Title != "Dentist" {
		t.Fatalf("update not applied: %+v", got)
	}

	list := decode[[]schedules.Schedule](t, do(t, h, http.MethodGet, "/schedules", ""))
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec = do(t, h, http.MethodDelete, path, "")
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[map[string]string](t, rec)["message"]; msg != "Schedule deleted successfully" {
		t.Fatalf("unexpected delete message: %q", msg)
	}

	expectError(t, do(t, h, http.MethodGet, path, ""), http.StatusNotFound, msgScheduleNotFound)
	expectError(t, do(t, h, http.MethodDelete, path, ""), http.StatusNotFound, msgScheduleNotFound)
	expectError(t, do(t, h, http.MethodPut, path, `{"title": "x"}`), http.StatusNotFound, msgScheduleNotFound)
}

func TestCreateSchedule_Invalid(t *testing.T) {
	h := newScheduleRouter(t)

	expectError(t, do(t, h, http.MethodPost, "/schedules", `{"description": "no title"}`), http.StatusBadRequest, "Title is required")
	expectError(t, do(t, h, http.MethodPost, "/schedules", `{"title": ""}`), http.StatusBadRequest, "Title is required")
	expectError(t, do(t, h, http.MethodPost, "/schedules", `not json`), http.StatusBadRequest, "Invalid JSON body")
	expectError(t, do(t, h, http.MethodPost, "/schedules", `{"title":"a"}xyz`), http.StatusBadRequest, "Invalid JSON body")
	expectError(t, do(t, h, http.MethodPost, "/schedules", `{"title":"a"}{"title":"b"}`), http.StatusBadRequest, "Invalid JSON body")

	list := decode[[]schedules.Schedule](t, do(t, h, http.MethodGet, "/schedules", ""))
	if len(list) != 0 {
		t.Fatalf("invalid requests must not create schedules, got %+v", list)
	}
}

func TestUpdateSchedule_RejectsEmptyTitle(t *testing.T) {
	h := newScheduleRouter(t)

	created := decode[createdResponse](t, do(t, h, http.MethodPost, "/schedules", `{"title": "Keep"}`))
	path := "/schedules/" + itoa(created.ID)

	expectError(t, do(t, h, http.MethodPut, path, `{"title": null}`), http.StatusBadRequest, "Title cannot be empty")
	expectError(t, do(t, h, http.MethodPut, path, `{"title": ""}`), http.StatusBadRequest, "Title cannot be empty")
	expectError(t, do(t, h, http.MethodPut, path, `{"completed": "yes"}`), http.StatusBadRequest, "Invalid JSON body")
	expectError(t, do(t, h, http.MethodPut, path, `{"title": "x"} trailing`), http.StatusBadRequest, "Invalid JSON body")

	got := decode[schedules.Schedule](t, do(t, h, http.MethodGet, path, ""))
	if got.Title != "Keep" {
		t.Fatalf("title changed to %q", got.Title)
	}
}

func TestUpdateSchedule_ConcurrentRequests(t *testing.T) {
	h := newScheduleRouter(t)

	var paths []string
	for i := 0; i < 8; i++ {
		created := decode[createdResponse](t, do(t, h, http.MethodPost, "/schedules", `{"title": "task"}`))
		paths = append(paths, "/schedules/"+itoa(created.ID))
	}

	var (
		mu     sync.Mutex
		counts = map[int]int{}
		wg     sync.WaitGroup
	)
	for round := 0; round < 20; round++ {
		for _, path := range paths {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"completed": true}`))
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				mu.Lock()
				counts[rec.Code]++
				mu.Unlock()
			}(path)
		}
	}
	wg.Wait()

	if counts[http.StatusOK] != len(paths)*20 {
		t.Fatalf("expected every update to succeed, status counts: %v", counts)
	}
}

func TestScheduleID_Overflow(t *testing.T) {
	h := newScheduleRouter(t)
	expectError(t, do(t, h, http.MethodGet, "/schedules/99999999999999999999", ""), http.StatusNotFound, msgScheduleNotFound)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(pingFunc(func(context.Context) error { return nil }))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Fatalf("unexpected body: %v", got)
	}

	rec = httptest.NewRecorder()
	Health(pingFunc(func(context.Context) error { return context.DeadlineExceeded }))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	expectError(t, rec, http.StatusServiceUnavailable, "Database unavailable")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
