package handlers

import (
	"net/http"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/store"
	"github.com/gorilla/mux"
)

// SettingsHandler handles time settings requests
type SettingsHandler struct {
	settings *store.SettingsStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes registers settings routes on a router with the /settings prefix
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/time", h.GetTimeSettings).Methods("GET")
	r.HandleFunc("/time", h.UpdateTimeSettings).Methods("PUT")
	r.HandleFunc("/time/toggle-format", h.ToggleTimeFormat).Methods("POST")
}

// UpdateTimeSettingsRequest carries the fields to change. Omitted fields
// keep their current value.
type UpdateTimeSettingsRequest struct {
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Use24Hour *bool   `json:"use24Hour,omitempty"`
}

// TimeSettingsResponse is the settings plus the timeline rows they produce
type TimeSettingsResponse struct {
	models.TimeSettings
	Slots []string `json:"slots"`
}

func newTimeSettingsResponse(ts models.TimeSettings) TimeSettingsResponse {
	slots := ts.Slots()
	if slots == nil {
		slots = []string{}
	}
	return TimeSettingsResponse{TimeSettings: ts, Slots: slots}
}

// GetTimeSettings returns the current time settings
func (h *SettingsHandler) GetTimeSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newTimeSettingsResponse(h.settings.Get()))
}

// UpdateTimeSettings applies the provided fields as one change
func (h *SettingsHandler) UpdateTimeSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateTimeSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	next := h.settings.Get()
	if req.StartTime != nil {
		next.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		next.EndTime = *req.EndTime
	}
	if req.Use24Hour != nil {
		next.Use24Hour = *req.Use24Hour
	}

	if err := h.settings.Set(next); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newTimeSettingsResponse(h.settings.Get()))
}

// ToggleTimeFormat switches between 12 and 24 hour display
func (h *SettingsHandler) ToggleTimeFormat(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newTimeSettingsResponse(h.settings.ToggleTimeFormat()))
}
