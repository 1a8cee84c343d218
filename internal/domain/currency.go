package domain

import "time"

// RateSnapshot is a wholesale-replaced capture of exchange rates relative to
// a base currency. Snapshots are never merged field by field; a refresh
// replaces the whole value.
type RateSnapshot struct {
	Rates        map[string]float64 `json:"rates"` // code -> multiplier relative to base
	BaseCurrency string             `json:"base_currency"`
	CapturedAt   time.Time          `json:"captured_at"`
}

// Fresh reports whether the snapshot is still inside the validity window.
func (s *RateSnapshot) Fresh(now time.Time, window time.Duration) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.CapturedAt) < window
}

// Rate returns the multiplier for a currency code and whether it is known.
// The base currency always converts with rate 1.
func (s *RateSnapshot) Rate(code string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	if code == s.BaseCurrency {
		return 1, true
	}
	rate, ok := s.Rates[code]
	return rate, ok
}
