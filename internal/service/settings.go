package service

import (
	"log/slog"
	"sync"

	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/store"
)

// SettingsService holds UI preferences. Currently that is just the theme.
type SettingsService struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex
	theme domain.Theme
}

// NewSettingsService creates a settings service with the light theme.
func NewSettingsService(st *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:  st,
		logger: logger,
		theme:  domain.ThemeLight,
	}
}

// Hydrate restores the persisted theme.
func (s *SettingsService) Hydrate() {
	theme, err := s.store.LoadTheme()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load theme", "error", err)
		}
		return
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
}

// Theme returns the active theme.
func (s *SettingsService) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme switches the theme and persists it. A write failure is logged;
// the in-memory theme stands.
func (s *SettingsService) SetTheme(theme domain.Theme) error {
	if !theme.Valid() {
		return domainerrors.Validationf("unknown theme %q", theme)
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if err := s.store.SaveTheme(theme); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist theme", "error", err)
	}
	return nil
}

// ToggleTheme flips between light and dark.
func (s *SettingsService) ToggleTheme() (domain.Theme, error) {
	s.mu.Lock()
	next := s.theme.Toggled()
	s.mu.Unlock()

	if err := s.SetTheme(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
