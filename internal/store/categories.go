package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/benvon/day-planner/internal/models"
	"go.uber.org/zap"
)

type categorySnapshot struct {
	Categories []models.Category `json:"categories"`
}

// CategoryStore owns the category collection. It starts with the default
// categories until a snapshot is loaded. Tasks are never touched here.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []models.Category
	persister  *Persister
	newID      func() string
	log        *zap.Logger
}

// NewCategoryStore creates a store seeded with the default categories
func NewCategoryStore(persister *Persister, opts ...Option) *CategoryStore {
	o := buildOptions(opts)
	return &CategoryStore{
		categories: models.DefaultCategories(),
		persister:  persister,
		newID:      o.newID,
		log:        o.log,
	}
}

// Load replaces the collection with the persisted snapshot. An absent key
// keeps the defaults; a persisted empty list stays empty.
func (s *CategoryStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	var snap categorySnapshot
	found, err := s.persister.Load(ctx, CategoryStoreKey, &snap)
	if models.IsCode(err, models.ErrCodeInvalidFormat) {
		s.log.Warn("category_snapshot_malformed", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if snap.Categories == nil {
		snap.Categories = []models.Category{}
	}

	s.mu.Lock()
	s.categories = snap.Categories
	s.mu.Unlock()
	return nil
}

// AddCategory appends a category with a fresh id
func (s *CategoryStore) AddCategory(in models.CategoryInput) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.Category{ID: s.newID(), Name: in.Name, Color: in.Color}
	s.categories = append(s.categories, c)
	s.persistLocked()
	return c
}

// UpdateCategory merges patch into the matching category
func (s *CategoryStore) UpdateCategory(id string, patch models.CategoryPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	patch.Apply(&s.categories[i])
	s.persistLocked()
}

// DeleteCategory removes the matching category. Tasks referencing it keep
// the dangling id.
func (s *CategoryStore) DeleteCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	next := make([]models.Category, 0, len(s.categories)-1)
	next = append(next, s.categories[:i]...)
	next = append(next, s.categories[i+1:]...)
	s.categories = next
	s.persistLocked()
}

// GetCategories returns a copy of the collection in insertion order
func (s *CategoryStore) GetCategories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// GetCategory returns the category with the given id
func (s *CategoryStore) GetCategory(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Category{}, false
	}
	return s.categories[i], true
}

// ResolveCategory returns the referenced category, or Uncategorized for an
// empty or dangling reference
func (s *CategoryStore) ResolveCategory(id string) models.Category {
	if id == "" {
		return models.Uncategorized
	}
	if c, ok := s.GetCategory(id); ok {
		return c
	}
	return models.Uncategorized
}

func (s *CategoryStore) indexLocked(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CategoryStore) persistLocked() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(categorySnapshot{Categories: s.categories})
	if err != nil {
		s.log.Error("category_snapshot_encode_failed", zap.Error(err))
		return
	}
	s.persister.Enqueue(CategoryStoreKey, data)
}
