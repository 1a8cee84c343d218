package store

import (
	"fmt"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// SaveTheme persists the UI theme preference.
func (s *Store) SaveTheme(theme domain.Theme) error {
	if err := s.set(keyTheme, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// LoadTheme returns the persisted theme, defaulting to light when none has
// been saved or the stored value is unknown.
func (s *Store) LoadTheme() (domain.Theme, error) {
	var raw string
	found, err := s.get(keyTheme, &raw)
	if err != nil {
		return domain.ThemeLight, fmt.Errorf("load theme: %w", err)
	}
	if !found {
		return domain.ThemeLight, nil
	}
	theme := domain.Theme(raw)
	if !theme.Valid() {
		return domain.ThemeLight, nil
	}
	return theme, nil
}
