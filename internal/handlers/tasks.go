package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/store"
	"github.com/benvon/day-planner/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// MaxDescriptionLength is the maximum length for task descriptions
	MaxDescriptionLength = 1000
	// ExportFileName is suggested to clients saving an export
	ExportFileName = "tasks.json"
	// importFlushTimeout bounds how long an import waits for persistence
	importFlushTimeout = 10 * time.Second
)

// TaskHandler handles task requests
type TaskHandler struct {
	tasks *store.TaskStore
	log   *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *store.TaskStore, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{tasks: tasks, log: log}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix (e.g., from apiRouter.PathPrefix("/tasks"))
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("", h.ClearTasks).Methods("DELETE")
	r.HandleFunc("/export", h.ExportTasks).Methods("GET")
	r.HandleFunc("/import", h.ImportTasks).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
	StartTime   string `json:"startTime" validate:"required,hhmm"`
	Duration    int    `json:"duration" validate:"min=1,max=1440"`
	Color       string `json:"color" validate:"max=32"`
	Emoji       string `json:"emoji" validate:"max=16"`
	Completed   bool   `json:"completed"`
	Date        string `json:"date" validate:"required,datekey"`
	Category    string `json:"category" validate:"max=64"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Description *string `json:"description,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	Color       *string `json:"color,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// ListTasksResponse represents the response for listing tasks
type ListTasksResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

// ImportTasksResponse reports how many tasks replaced the collection
type ImportTasksResponse struct {
	Imported int `json:"imported"`
}

// ListTasks lists tasks, optionally filtered by date and category
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var tasks []models.Task
	if date := query.Get("date"); date != "" {
		if err := validation.ValidateDateKey("date", date); err != nil {
			respondJSONError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		tasks = h.tasks.GetTasksForDay(date)
	} else {
		tasks = h.tasks.Tasks()
	}

	if query.Has("category") {
		category := query.Get("category")
		filtered := []models.Task{}
		for _, t := range tasks {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	respondJSON(w, http.StatusOK, ListTasksResponse{Tasks: tasks, Total: len(tasks)})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Description = validation.SanitizeText(req.Description)
	if !validateRequest(w, r, req) {
		return
	}

	task := h.tasks.AddTask(models.TaskInput{
		Description: req.Description,
		StartTime:   req.StartTime,
		Duration:    req.Duration,
		Color:       req.Color,
		Emoji:       req.Emoji,
		Completed:   req.Completed,
		Date:        req.Date,
		Category:    req.Category,
	})

	respondJSON(w, http.StatusCreated, task)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.tasks.GetTask(mux.Vars(r)["id"])
	if !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask merges the provided fields into a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.tasks.GetTask(id); !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	var req UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	h.tasks.UpdateTask(id, patch)
	task, ok := h.tasks.GetTask(id)
	if !ok {
		// Deleted concurrently
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.tasks.GetTask(id); !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	h.tasks.DeleteTask(id)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask flips the completion state of a task
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.tasks.GetTask(id); !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	h.tasks.ToggleTask(id)
	task, _ := h.tasks.GetTask(id)
	respondJSON(w, http.StatusOK, task)
}

// ClearTasks removes every task. Requires ?confirm=true.
func (h *TaskHandler) ClearTasks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Clearing all tasks requires confirm=true")
		return
	}
	removed := h.tasks.Len()
	h.tasks.ClearAllTasks()
	h.log.Info("tasks_cleared", zap.Int("removed", removed))
	w.WriteHeader(http.StatusNoContent)
}

// ExportTasks returns the raw JSON array of all tasks as a download
func (h *TaskHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	data, err := h.tasks.ExportTasks()
	if err != nil {
		h.log.Error("task_export_failed", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to export tasks")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("task_export_write_failed", zap.Error(err))
	}
}

// ImportTasks replaces every task with the JSON array in the body
func (h *TaskHandler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Failed to read request body")
		return
	}

	// Persistence must not be cut short by a client disconnect
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), importFlushTimeout)
	defer cancel()

	if err := h.tasks.ImportTasks(ctx, body); err != nil {
		if errors.Is(err, models.ErrImportFormat) {
			respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Invalid data format")
			return
		}
		h.log.Error("task_import_persist_failed", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to import tasks")
		return
	}

	respondJSON(w, http.StatusOK, ImportTasksResponse{Imported: h.tasks.Len()})
}

// toPatch validates the provided fields and converts them to a store patch
func (req UpdateTaskRequest) toPatch() (models.TaskPatch, error) {
	patch := models.TaskPatch{
		Duration:  req.Duration,
		Completed: req.Completed,
		Color:     req.Color,
		Emoji:     req.Emoji,
		Category:  req.Category,
	}
	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		if sanitized == "" {
			return patch, fmt.Errorf("description cannot be empty after sanitization")
		}
		if len(sanitized) > MaxDescriptionLength {
			return patch, fmt.Errorf("description exceeds maximum length of %d characters", MaxDescriptionLength)
		}
		patch.Description = &sanitized
	}
	if req.StartTime != nil {
		if err := validation.ValidateClock("startTime", *req.StartTime); err != nil {
			return patch, err
		}
		patch.StartTime = req.StartTime
	}
	if req.Date != nil {
		if err := validation.ValidateDateKey("date", *req.Date); err != nil {
			return patch, err
		}
		patch.Date = req.Date
	}
	if req.Duration != nil && (*req.Duration < 1 || *req.Duration > 24*60) {
		return patch, fmt.Errorf("duration must be between 1 and 1440 minutes")
	}
	return patch, nil
}
