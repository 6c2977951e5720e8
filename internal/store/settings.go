package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/benvon/day-planner/internal/models"
	"go.uber.org/zap"
)

// SettingsStore holds the visible day range and clock format
type SettingsStore struct {
	mu        sync.RWMutex
	settings  models.TimeSettings
	persister *Persister
	log       *zap.Logger
}

// NewSettingsStore creates a store holding the default settings
func NewSettingsStore(persister *Persister, opts ...Option) *SettingsStore {
	o := buildOptions(opts)
	return &SettingsStore{
		settings:  models.DefaultTimeSettings(),
		persister: persister,
		log:       o.log,
	}
}

// Load replaces the settings with the persisted ones. Missing or
// malformed values keep the defaults.
func (s *SettingsStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	loaded := models.DefaultTimeSettings()
	found, err := s.persister.Load(ctx, SettingsKey, &loaded)
	if models.IsCode(err, models.ErrCodeInvalidFormat) {
		s.log.Warn("time_settings_malformed", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if err := loaded.Validate(); err != nil {
		s.log.Warn("time_settings_invalid", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return nil
}

// Get returns the current settings
func (s *SettingsStore) Get() models.TimeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set replaces all settings. Invalid settings are rejected and the
// previous value is kept.
func (s *SettingsStore) Set(next models.TimeSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = next
	s.persistLocked()
	return nil
}

// SetStartTime changes the first visible hour
func (s *SettingsStore) SetStartTime(hhmm string) error {
	return s.update(func(ts *models.TimeSettings) {
		ts.StartTime = hhmm
	})
}

// SetEndTime changes the last visible hour
func (s *SettingsStore) SetEndTime(hhmm string) error {
	return s.update(func(ts *models.TimeSettings) {
		ts.EndTime = hhmm
	})
}

// ToggleTimeFormat switches between 12 and 24 hour display
func (s *SettingsStore) ToggleTimeFormat() models.TimeSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Use24Hour = !s.settings.Use24Hour
	s.persistLocked()
	return s.settings
}

// Slots returns the hourly timeline rows for the current settings
func (s *SettingsStore) Slots() []string {
	return s.Get().Slots()
}

// FormatTime renders an HH:MM clock in the current display format
func (s *SettingsStore) FormatTime(hhmm string) string {
	return s.Get().Display(hhmm)
}

func (s *SettingsStore) update(mutate func(*models.TimeSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	mutate(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.settings = next
	s.persistLocked()
	return nil
}

func (s *SettingsStore) persistLocked() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(s.settings)
	if err != nil {
		s.log.Error("time_settings_encode_failed", zap.Error(err))
		return
	}
	s.persister.Enqueue(SettingsKey, data)
}
