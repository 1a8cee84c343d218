package store

import (
	"fmt"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// SaveRateSnapshot persists the last fetched exchange rates so a later start
// can fall back to them when the rate provider is unreachable.
func (s *Store) SaveRateSnapshot(snapshot *domain.RateSnapshot) error {
	if err := s.set(keyCurrencyCache, snapshot); err != nil {
		return fmt.Errorf("save rate snapshot: %w", err)
	}
	return nil
}

// LoadRateSnapshot returns the persisted rate snapshot, if any.
func (s *Store) LoadRateSnapshot() (*domain.RateSnapshot, bool, error) {
	var snapshot domain.RateSnapshot
	found, err := s.get(keyCurrencyCache, &snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("load rate snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &snapshot, true, nil
}

// SaveSelectedCurrency remembers the display currency across restarts.
func (s *Store) SaveSelectedCurrency(code string) error {
	if err := s.set(keyCurrencySelected, code); err != nil {
		return fmt.Errorf("save selected currency: %w", err)
	}
	return nil
}

// LoadSelectedCurrency returns the persisted display currency, if any.
func (s *Store) LoadSelectedCurrency() (string, bool, error) {
	var code string
	found, err := s.get(keyCurrencySelected, &code)
	if err != nil {
		return "", false, fmt.Errorf("load selected currency: %w", err)
	}
	return code, found, nil
}
