package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/config"
	"github.com/bookhaven/bookhaven/internal/logger"
	"github.com/bookhaven/bookhaven/internal/ratelimit"
	"github.com/bookhaven/bookhaven/internal/service"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// ProvideSessionService provides the session lifecycle service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(
		do.MustInvoke[*backend.Client](i),
		do.MustInvoke[*StoreHandle](i).Store,
		do.MustInvoke[*ratelimit.Limiter](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.Auth.AccessTokenTTL,
		log.Logger,
	), nil
}

// ProvideFavoritesService provides the favorites service.
func ProvideFavoritesService(i do.Injector) (*service.FavoritesService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewFavoritesService(do.MustInvoke[*StoreHandle](i).Store, log.Logger), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(
		do.MustInvoke[*backend.Client](i),
		do.MustInvoke[*service.FavoritesService](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.Catalog.MaxPages,
		log.Logger,
	), nil
}

// ProvideCurrencyService provides the exchange-rate service.
func ProvideCurrencyService(i do.Injector) (*service.CurrencyService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCurrencyService(
		do.MustInvoke[*backend.Client](i),
		do.MustInvoke[*StoreHandle](i).Store,
		cfg.Currency.ValidityWindow,
		cfg.Currency.BaseCurrency,
		cfg.Currency.DefaultCurrency,
		log.Logger,
	), nil
}

// ProvideCommentsService provides the book review service.
func ProvideCommentsService(i do.Injector) (*service.CommentsService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewCommentsService(
		do.MustInvoke[*StoreHandle](i).Store,
		do.MustInvoke[*validation.Validator](i),
		log.Logger,
	), nil
}

// ProvideSettingsService provides the UI settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewSettingsService(do.MustInvoke[*StoreHandle](i).Store, log.Logger), nil
}

// ProvideApp provides the aggregate application facade.
func ProvideApp(i do.Injector) (*service.App, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewApp(
		do.MustInvoke[*service.SessionService](i),
		do.MustInvoke[*service.CatalogService](i),
		do.MustInvoke[*service.CurrencyService](i),
		do.MustInvoke[*service.FavoritesService](i),
		do.MustInvoke[*service.CommentsService](i),
		do.MustInvoke[*service.SettingsService](i),
		log.Logger,
	), nil
}
