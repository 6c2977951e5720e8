package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/config"
	"github.com/benvon/day-planner/internal/middleware"
	"github.com/benvon/day-planner/internal/persistence"
)

func newTestHandler(t *testing.T, rate string) http.Handler {
	t.Helper()

	cfg := &config.Config{
		FrontendURL:    "https://planner.example.com",
		StorageBackend: persistence.BackendMemory,
		RateLimit:      rate,
		PersistTimeout: time.Second,
		BackupDir:      t.TempDir(),
	}
	a, err := app.New(context.Background(), cfg, persistence.NewMemoryAdapter(), nil)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = a.Close(context.Background()) // Ignore error in test
	})

	doc := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(doc, []byte("openapi: 3.0.3\ninfo:\n  title: t\n  version: \"1\"\npaths: {}\n"), 0o600); err != nil {
		t.Fatalf("Failed to write OpenAPI doc: %v", err)
	}

	h, err := newHandler(a, routerOptions{
		openAPIPath: doc,
		now:         func() time.Time { return time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}
	return h
}

func TestHandler_Routes(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, "1000-S")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "health", method: "GET", path: "/healthz", wantStatus: http.StatusOK},
		{name: "version", method: "GET", path: "/version", wantStatus: http.StatusOK},
		{name: "openapi", method: "GET", path: "/api/v1/openapi.json", wantStatus: http.StatusOK},
		{name: "list tasks", method: "GET", path: "/api/v1/tasks", wantStatus: http.StatusOK},
		{name: "create task", method: "POST", path: "/api/v1/tasks", body: `{"description":"Read","startTime":"20:00","duration":30,"date":"2024-01-17"}`, wantStatus: http.StatusCreated},
		{name: "wrong content type", method: "POST", path: "/api/v1/categories", body: `name=x`, wantStatus: http.StatusUnsupportedMediaType},
		{name: "categories", method: "GET", path: "/api/v1/categories", wantStatus: http.StatusOK},
		{name: "settings", method: "GET", path: "/api/v1/settings/time", wantStatus: http.StatusOK},
		{name: "toggle format without body", method: "POST", path: "/api/v1/settings/time/toggle-format", wantStatus: http.StatusOK},
		{name: "dashboard", method: "GET", path: "/api/v1/stats/dashboard", wantStatus: http.StatusOK},
		{name: "timeline", method: "GET", path: "/api/v1/timeline?date=2024-01-17", wantStatus: http.StatusOK},
		{name: "week", method: "GET", path: "/api/v1/calendar/week", wantStatus: http.StatusOK},
		{name: "backups", method: "GET", path: "/api/v1/backups", wantStatus: http.StatusOK},
		{name: "unknown", method: "GET", path: "/api/v1/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				if strings.HasPrefix(tt.body, "{") {
					req.Header.Set("Content-Type", "application/json")
				} else {
					req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				}
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("Expected a request ID header")
			}
		})
	}
}

func TestHandler_SecurityAndCORS(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, "1000-S")

	req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
	req.Header.Set("Origin", "https://planner.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://planner.example.com" {
		t.Errorf("Expected allowed origin to be echoed, got %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff, got %q", got)
	}

	pre := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks/abc", nil)
	pre.Header.Set("Origin", "https://planner.example.com")
	pre.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, pre)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected preflight 204, got %d", w.Code)
	}
}

func TestHandler_RateLimitSparesHealth(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, "1-M")

	codes := make([]int, 0, 3)
	for _, path := range []string{"/api/v1/tasks", "/api/v1/tasks", "/healthz"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusOK, http.StatusTooManyRequests, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Request %d: expected %d, got %d", i, want[i], codes[i])
		}
	}
}

func TestHandler_InvalidRate(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{StorageBackend: persistence.BackendMemory, RateLimit: "often", PersistTimeout: time.Second}
	a, err := app.New(context.Background(), cfg, persistence.NewMemoryAdapter(), nil)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer func() {
		_ = a.Close(context.Background()) // Ignore error in test
	}()

	if _, err := newHandler(a, routerOptions{}); err == nil {
		t.Error("Expected an error for a malformed rate limit")
	}
}

func TestHandler_ErrorBodyIsJSON(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, "1000-S")
	req := httptest.NewRequest("PATCH", "/api/v1/tasks/x", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if body["success"] != false {
		t.Errorf("Expected success=false, got %v", body["success"])
	}
}

func TestHandler_ErrorBodyCarriesRequestID(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, "1000-S")

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "missing task", path: "/api/v1/tasks/nope", wantStatus: http.StatusNotFound},
		{name: "bad date", path: "/api/v1/stats/day?date=bad", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(middleware.RequestIDHeader, "req-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["requestId"] != "req-123" {
				t.Errorf("Expected requestId 'req-123', got %v", body["requestId"])
			}
		})
	}
}
