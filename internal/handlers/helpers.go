package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/request"
	"github.com/benvon/day-planner/internal/validation"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	sanitized := message
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, r *http.Request, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Sanitize error message to prevent information disclosure
	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if id := request.RequestID(r); id != "" {
		response["requestId"] = id
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v, writing the error response
// itself when decoding fails
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Check if error is due to request size limit
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// validateRequest runs struct validation and writes a 400 on failure
func validateRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", validation.Describe(err))
		return false
	}
	return true
}

// respondDomainError maps coded domain errors onto HTTP statuses
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *models.Error
	if !errors.As(err, &domainErr) {
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", "Unexpected error")
		return
	}
	switch domainErr.Code {
	case models.ErrCodeNotFound:
		respondJSONError(w, r, http.StatusNotFound, "Not Found", domainErr.Message)
	case models.ErrCodeInvalid, models.ErrCodeInvalidFormat:
		respondJSONError(w, r, http.StatusBadRequest, "Bad Request", domainErr.Message)
	default:
		respondJSONError(w, r, http.StatusInternalServerError, "Internal Server Error", domainErr.Message)
	}
}
