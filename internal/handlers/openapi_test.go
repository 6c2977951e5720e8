package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	doc := "openapi: 3.0.3\ninfo:\n  title: Day Planner API\n  version: 1.0.0\npaths: {}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	r := mux.NewRouter()
	NewOpenAPIHandler(path).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/openapi.yaml", nil))
	if w.Code != http.StatusOK || w.Body.String() != doc {
		t.Errorf("Unexpected YAML response %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/openapi.json", nil))
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	info, _ := body["info"].(map[string]any)
	if info["title"] != "Day Planner API" {
		t.Errorf("Unexpected info %v", body["info"])
	}
}

func TestOpenAPIHandler_Missing(t *testing.T) {
	t.Parallel()

	h := NewOpenAPIHandler(filepath.Join(t.TempDir(), "missing.yaml"))
	w := httptest.NewRecorder()
	h.ServeJSON(w, httptest.NewRequest("GET", "/api/v1/openapi.json", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestOpenAPIHandler_BundledDocument(t *testing.T) {
	t.Parallel()

	h := NewOpenAPIHandler(filepath.Join("..", "..", "api", "openapi", "openapi.yaml"))
	w := httptest.NewRecorder()
	h.ServeJSON(w, httptest.NewRequest("GET", "/api/v1/openapi.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	for _, path := range []string{
		"/api/v1/tasks", "/api/v1/tasks/{id}/toggle", "/api/v1/categories/{id}",
		"/api/v1/settings/time", "/api/v1/stats/dashboard", "/api/v1/timeline",
		"/api/v1/calendar/week", "/api/v1/backups", "/api/v1/backups/{name}/restore",
	} {
		if _, ok := body.Paths[path]; !ok {
			t.Errorf("Expected the document to describe %s", path)
		}
	}
}
