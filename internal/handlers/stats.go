package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/stats"
	"github.com/benvon/day-planner/internal/store"
	"github.com/gorilla/mux"
)

// StatsHandler serves the derived views: dashboard, day overview,
// timeline and week strip
type StatsHandler struct {
	tasks      *store.TaskStore
	categories *store.CategoryStore
	settings   *store.SettingsStore
	now        func() time.Time
}

// StatsHandlerOption configures a StatsHandler
type StatsHandlerOption func(*StatsHandler)

// WithClock sets the function used to determine "today"
func WithClock(now func() time.Time) StatsHandlerOption {
	return func(h *StatsHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(tasks *store.TaskStore, categories *store.CategoryStore, settings *store.SettingsStore, opts ...StatsHandlerOption) *StatsHandler {
	h := &StatsHandler{
		tasks:      tasks,
		categories: categories,
		settings:   settings,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the derived views on the /api/v1 router
func (h *StatsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stats/dashboard", h.Dashboard).Methods("GET")
	r.HandleFunc("/stats/day", h.DayOverview).Methods("GET")
	r.HandleFunc("/timeline", h.Timeline).Methods("GET")
	r.HandleFunc("/calendar/week", h.Week).Methods("GET")
}

// TimelineResponse is the hourly day view
type TimelineResponse struct {
	Date     string               `json:"date"`
	Overview stats.DayOverview    `json:"overview"`
	Slots    []stats.TimelineSlot `json:"slots"`
}

// Dashboard returns completion statistics for the window ending at ?date=
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stats.Summarize(h.tasks.Tasks(), ref))
}

// DayOverview returns totals for a single day
func (h *StatsHandler) DayOverview(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}
	key := models.DateKey(ref)
	respondJSON(w, http.StatusOK, stats.Overview(h.tasks.GetTasksForDay(key), key))
}

// Timeline returns the day's tasks bucketed into hourly slots
func (h *StatsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}
	key := models.DateKey(ref)
	dayTasks := h.tasks.GetTasksForDay(key)
	respondJSON(w, http.StatusOK, TimelineResponse{
		Date:     key,
		Overview: stats.Overview(dayTasks, key),
		Slots:    stats.Timeline(dayTasks, key, h.settings.Get(), h.categories.ResolveCategory),
	})
}

// Week returns the Monday-start week containing ?date=
func (h *StatsHandler) Week(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceDate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stats.WeekDays(h.tasks.Tasks(), ref, h.now()))
}

// referenceDate parses ?date= in the store's location, defaulting to today
func (h *StatsHandler) referenceDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	loc := h.tasks.Location()
	date := r.URL.Query().Get("date")
	if date == "" {
		return h.now().In(loc), true
	}
	ref, err := models.ParseDateKey(date, loc)
	if err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Invalid date: must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return ref, true
}
