package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/store"
)

// Hardcoded last-resort rates, used when neither a live fetch nor a
// persisted snapshot is available.
var fallbackRates = map[string]float64{
	"TRY": 1,
	"USD": 0.032,
	"EUR": 0.029,
	"GBP": 0.025,
}

// Symbols for the currencies the catalog can display.
var currencySymbols = map[string]string{
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencyService caches exchange rates and converts catalog prices into
// the selected display currency. A snapshot stays valid for a configured
// window; within it no fetch goes out. When the provider is unreachable the
// service degrades through progressively staler data instead of failing.
type CurrencyService struct {
	backend *backend.Client
	store   *store.Store
	logger  *slog.Logger

	validityWindow time.Duration
	baseCurrency   string

	mu       sync.Mutex
	snapshot *domain.RateSnapshot
	selected string
	warning  string

	now func() time.Time
}

// NewCurrencyService creates a currency service with no cached rates.
func NewCurrencyService(backendClient *backend.Client, st *store.Store, validityWindow time.Duration, baseCurrency, defaultCurrency string, logger *slog.Logger) *CurrencyService {
	if validityWindow <= 0 {
		validityWindow = 30 * time.Minute
	}
	if baseCurrency == "" {
		baseCurrency = "TRY"
	}
	if defaultCurrency == "" {
		defaultCurrency = baseCurrency
	}
	return &CurrencyService{
		backend:        backendClient,
		store:          st,
		logger:         logger,
		validityWindow: validityWindow,
		baseCurrency:   baseCurrency,
		selected:       defaultCurrency,
		now:            time.Now,
	}
}

// Hydrate restores the persisted snapshot and selected currency.
func (s *CurrencyService) Hydrate() {
	if snapshot, found, err := s.store.LoadRateSnapshot(); err == nil && found {
		s.mu.Lock()
		s.snapshot = snapshot
		s.mu.Unlock()
	} else if err != nil && s.logger != nil {
		s.logger.Warn("failed to load persisted rates", "error", err)
	}

	if code, found, err := s.store.LoadSelectedCurrency(); err == nil && found {
		s.mu.Lock()
		s.selected = code
		s.mu.Unlock()
	} else if err != nil && s.logger != nil {
		s.logger.Warn("failed to load selected currency", "error", err)
	}
}

// FetchRates returns usable exchange rates. A fresh cached snapshot is
// returned as is. Otherwise the provider is asked; on failure the service
// falls back to the stale in-memory snapshot, then the persisted one, then
// the hardcoded table, and records a warning instead of failing.
func (s *CurrencyService) FetchRates(ctx context.Context) (*domain.RateSnapshot, error) {
	s.mu.Lock()
	cached := s.snapshot
	s.mu.Unlock()

	if cached != nil && cached.Fresh(s.now(), s.validityWindow) {
		return cached, nil
	}

	snapshot, err := s.backend.FetchRates(ctx)
	if err == nil {
		s.mu.Lock()
		s.snapshot = snapshot
		s.warning = ""
		s.mu.Unlock()

		if serr := s.store.SaveRateSnapshot(snapshot); serr != nil && s.logger != nil {
			s.logger.Warn("failed to persist rate snapshot", "error", serr)
		}
		return snapshot, nil
	}

	if s.logger != nil {
		s.logger.Warn("rate fetch failed, falling back", "error", err)
	}

	// Stale in-memory snapshot beats anything on disk.
	if cached != nil {
		s.setWarning("offline mode: using last known rates")
		return cached, nil
	}

	if persisted, found, perr := s.store.LoadRateSnapshot(); perr == nil && found {
		s.mu.Lock()
		s.snapshot = persisted
		s.mu.Unlock()
		s.setWarning("offline mode: using last known rates")
		return persisted, nil
	}

	fallback := &domain.RateSnapshot{
		Rates:        fallbackRates,
		BaseCurrency: s.baseCurrency,
		CapturedAt:   time.Time{}, // never fresh, retried on next call
	}
	s.mu.Lock()
	s.snapshot = fallback
	s.mu.Unlock()
	s.setWarning("offline mode: using default rates")
	return fallback, nil
}

// Convert converts an amount in base-currency minor units to the target
// currency. An unknown target leaves the amount unchanged; conversion is
// never a hard failure.
func (s *CurrencyService) Convert(amountMinor int64, target string) decimal.Decimal {
	amount := decimal.NewFromInt(amountMinor).Div(decimal.NewFromInt(100))

	s.mu.Lock()
	snapshot := s.snapshot
	s.mu.Unlock()

	if snapshot == nil || target == s.baseCurrency {
		return amount
	}

	rate, ok := snapshot.Rate(target)
	if !ok {
		if s.logger != nil {
			s.logger.Debug("no rate for currency, leaving amount unconverted", "currency", target)
		}
		return amount
	}

	return amount.Mul(decimal.NewFromFloat(rate)).Round(2)
}

// DisplayPrice formats a base-currency price in the selected currency.
func (s *CurrencyService) DisplayPrice(amountMinor int64) string {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	symbol, ok := currencySymbols[selected]
	if !ok {
		symbol = selected + " "
	}
	return symbol + s.Convert(amountMinor, selected).StringFixed(2)
}

// SetSelectedCurrency switches the display currency and persists the choice.
// A write failure is logged; the in-memory selection stands.
func (s *CurrencyService) SetSelectedCurrency(code string) error {
	if _, ok := currencySymbols[code]; !ok {
		return domainerrors.Validationf("unsupported currency %q", code)
	}

	s.mu.Lock()
	s.selected = code
	s.mu.Unlock()

	if err := s.store.SaveSelectedCurrency(code); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist selected currency", "error", err)
	}
	return nil
}

// SelectedCurrency returns the active display currency.
func (s *CurrencyService) SelectedCurrency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Warning returns the current degradation notice, empty when rates are live.
func (s *CurrencyService) Warning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

func (s *CurrencyService) setWarning(msg string) {
	s.mu.Lock()
	s.warning = msg
	s.mu.Unlock()
}
