package handlers

import (
	"net/http"

	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/store"
	"github.com/benvon/day-planner/internal/validation"
	"github.com/gorilla/mux"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categories *store.CategoryStore
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *store.CategoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// RegisterRoutes registers category routes on a router with the /categories prefix
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.CreateCategory).Methods("POST")
	r.HandleFunc("/{id}", h.GetCategory).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateCategory).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteCategory).Methods("DELETE")
}

// CreateCategoryRequest represents a create category request
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"required,max=32"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// ListCategories returns every category in insertion order
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.categories.GetCategories())
}

// CreateCategory adds a category
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if !validateRequest(w, r, req) {
		return
	}

	c := h.categories.AddCategory(models.CategoryInput{Name: req.Name, Color: req.Color})
	respondJSON(w, http.StatusCreated, c)
}

// GetCategory returns one category
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.categories.GetCategory(mux.Vars(r)["id"])
	if !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateCategory merges the provided fields into a category
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.categories.GetCategory(id); !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Category not found")
		return
	}

	var req UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if sanitized == "" {
			respondJSONError(w, r, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		req.Name = &sanitized
	}

	h.categories.UpdateCategory(id, models.CategoryPatch{Name: req.Name, Color: req.Color})
	c, ok := h.categories.GetCategory(id)
	if !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCategory removes a category. Tasks keep their reference.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.categories.GetCategory(id); !ok {
		respondJSONError(w, r, http.StatusNotFound, "Not Found", "Category not found")
		return
	}
	h.categories.DeleteCategory(id)
	w.WriteHeader(http.StatusNoContent)
}
