package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/config"
	"github.com/bookhaven/bookhaven/internal/logger"
	"github.com/bookhaven/bookhaven/internal/ratelimit"
	"github.com/bookhaven/bookhaven/internal/store"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the embedded state database. The seal key for
// session values lives next to the database files.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	sealKey, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath, "seal")
	if err != nil {
		return nil, err
	}

	s, err := store.New(filepath.Join(cfg.Storage.DataPath, "state.db"), sealKey, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: s}, nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath, "auth")
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"access_token_ttl", cfg.Auth.AccessTokenTTL,
		"refresh_token_ttl", cfg.Auth.RefreshTokenTTL,
	)

	return auth.NewTokenService(key, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
}

// ProvideRateLimiter provides the login failure limiter.
func ProvideRateLimiter(i do.Injector) (*ratelimit.Limiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.RateLimit.MaxAttempts, cfg.RateLimit.BlockDuration), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBackend provides the simulated bookstore API client.
func ProvideBackend(i do.Injector) (*backend.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tokens := do.MustInvoke[*auth.TokenService](i)

	return backend.New(backend.Config{
		Latency:      cfg.Backend.Latency,
		ItemsPerPage: cfg.Catalog.ItemsPerPage,
		MaxPages:     cfg.Catalog.MaxPages,
		BaseCurrency: cfg.Currency.BaseCurrency,
	}, tokens, log.Logger)
}
