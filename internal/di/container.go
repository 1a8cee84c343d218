// Package di provides dependency injection configuration for the
// application.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/config"
	"github.com/bookhaven/bookhaven/internal/di/providers"
	"github.com/bookhaven/bookhaven/internal/logger"
	"github.com/bookhaven/bookhaven/internal/ratelimit"
	"github.com/bookhaven/bookhaven/internal/service"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideBackend)

	// State services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideFavoritesService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideCurrencyService)
	do.Provide(injector, providers.ProvideCommentsService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideApp)

	// Workers
	do.Provide(injector, providers.ProvideSessionRefreshJob)
	do.Provide(injector, providers.ProvideCurrencyRefreshJob)

	return injector
}

// Bootstrap eagerly initializes every service, hydrates persisted state and
// starts the background jobs.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*ratelimit.Limiter](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*backend.Client](injector)

	// State services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.FavoritesService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.CurrencyService](injector)
	_ = do.MustInvoke[*service.CommentsService](injector)
	_ = do.MustInvoke[*service.SettingsService](injector)

	app := do.MustInvoke[*service.App](injector)
	app.Hydrate(ctx)

	// Workers start after hydration so the first tick sees real state.
	_ = do.MustInvoke[*providers.SessionRefreshJob](injector)
	_ = do.MustInvoke[*providers.CurrencyRefreshJob](injector)

	return nil
}
