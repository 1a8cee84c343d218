package backend

import (
	"context"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// FetchRates returns the current exchange rates against the base currency.
// The simulated provider serves a fixed table; tests flip it into failure
// mode with FailRates to drive the offline fallback.
func (c *Client) FetchRates(ctx context.Context) (*domain.RateSnapshot, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	rateErr := c.rateErr
	c.mu.Unlock()
	if rateErr != nil {
		return nil, rateErr
	}

	return &domain.RateSnapshot{
		Rates: map[string]float64{
			"TRY": 1,
			"USD": 0.031,
			"EUR": 0.028,
			"GBP": 0.024,
		},
		BaseCurrency: c.cfg.BaseCurrency,
		CapturedAt:   c.now(),
	}, nil
}

// FailRates makes subsequent FetchRates calls fail with err. Passing nil
// restores normal behaviour.
func (c *Client) FailRates(err error) {
	c.mu.Lock()
	c.rateErr = err
	c.mu.Unlock()
}
