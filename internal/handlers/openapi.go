package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the API description as YAML and as JSON. The file
// is read once on first request.
type OpenAPIHandler struct {
	path string

	once    sync.Once
	yamlDoc []byte
	jsonDoc []byte
	loadErr error
}

// NewOpenAPIHandler creates a handler for the YAML document at path
func NewOpenAPIHandler(path string) *OpenAPIHandler {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		absPath = path
	}
	return &OpenAPIHandler{path: absPath}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

func (h *OpenAPIHandler) load() {
	data, err := os.ReadFile(h.path)
	if err != nil {
		h.loadErr = fmt.Errorf("failed to read OpenAPI document: %w", err)
		return
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		h.loadErr = fmt.Errorf("failed to parse OpenAPI document: %w", err)
		return
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		h.loadErr = fmt.Errorf("failed to convert OpenAPI document: %w", err)
		return
	}

	h.yamlDoc = data
	h.jsonDoc = converted
}

// ServeYAML serves the document as written
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.load)
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlDoc)
}

// ServeJSON serves the document converted to JSON
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.load)
	if h.loadErr != nil {
		http.Error(w, "OpenAPI specification not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
