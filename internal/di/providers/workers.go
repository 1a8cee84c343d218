package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven/internal/config"
	"github.com/bookhaven/bookhaven/internal/logger"
	"github.com/bookhaven/bookhaven/internal/service"
)

// SessionRefreshJob keeps the session's access token fresh in the
// background. It refreshes preemptively well before expiry; see
// SessionService.RefreshIfNeeded for the threshold. Ticks while anonymous
// are no-ops; the job runs until shutdown.
type SessionRefreshJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionRefreshJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionRefreshJob provides the periodic token refresh job.
func ProvideSessionRefreshJob(i do.Injector) (*SessionRefreshJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	session := do.MustInvoke[*service.SessionService](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Auth.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := session.RefreshIfNeeded(ctx); err != nil {
					log.Warn("Background token refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session refresh job started", "interval", cfg.Auth.RefreshInterval)

	return &SessionRefreshJob{cancel: cancel}, nil
}

// CurrencyRefreshJob refetches exchange rates as they go stale.
type CurrencyRefreshJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *CurrencyRefreshJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideCurrencyRefreshJob provides the periodic rate refresh job.
func ProvideCurrencyRefreshJob(i do.Injector) (*CurrencyRefreshJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	currency := do.MustInvoke[*service.CurrencyService](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Currency.ValidityWindow)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := currency.FetchRates(ctx); err != nil {
					log.Warn("Background rate refresh failed", "error", err)
				} else if warning := currency.Warning(); warning != "" {
					log.Warn("Exchange rates degraded", "warning", warning)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Currency refresh job started", "interval", cfg.Currency.ValidityWindow)

	return &CurrencyRefreshJob{cancel: cancel}, nil
}
