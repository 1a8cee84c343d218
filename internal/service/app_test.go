package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/domain"
)

func TestApp_HydrateRestoresEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)
	env.favorites.Toggle(domain.Book{ID: "book-1", Title: "1984"})
	require.NoError(t, env.settings.SetTheme(domain.ThemeDark))
	require.NoError(t, env.currency.SetSelectedCurrency("USD"))

	// A new app over the same store picks it all up.
	session := NewSessionService(env.backend, env.store, env.limiter, env.validator, testAccessTTL, nil)
	favorites := NewFavoritesService(env.store, nil)
	catalog := NewCatalogService(env.backend, favorites, env.validator, 5, nil)
	currency := NewCurrencyService(env.backend, env.store, 0, "TRY", "TRY", nil)
	comments := NewCommentsService(env.store, env.validator, nil)
	settings := NewSettingsService(env.store, nil)
	app := NewApp(session, catalog, currency, favorites, comments, settings, nil)

	app.Hydrate(ctx)

	assert.True(t, app.IsAuthenticated())
	assert.Equal(t, demoEmail, app.CurrentUser().Email)
	assert.True(t, app.IsFavorite("book-1"))
	assert.Equal(t, domain.ThemeDark, app.Theme())
	assert.Equal(t, "USD", app.SelectedCurrency())
}

func TestApp_ToggleFavoriteByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalog.FetchPage(ctx, 1))

	require.NoError(t, env.app.ToggleFavorite("book-4"))
	assert.True(t, env.app.IsFavorite("book-4"))

	// Even after the catalog forgets the book, the favorite can be removed
	// from its stored snapshot.
	env.catalog.Reset()
	require.NoError(t, env.app.ToggleFavorite("book-4"))
	assert.False(t, env.app.IsFavorite("book-4"))

	err := env.app.ToggleFavorite("book-999")
	assert.Error(t, err)
}

func TestApp_DisplayPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.currency.FetchRates(ctx)
	require.NoError(t, err)

	book := &domain.Book{ID: "book-1", PriceMinor: 4599}
	assert.Equal(t, "₺45.99", env.app.DisplayPrice(book))

	free := &domain.Book{ID: "book-17", IsFree: true, PriceMinor: 0}
	assert.Equal(t, "Free", env.app.DisplayPrice(free))
}

func TestSettings_ToggleTheme(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, domain.ThemeLight, env.settings.Theme())

	next, err := env.settings.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, next)

	next, err = env.settings.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, next)

	// The persisted theme wins on restart.
	require.NoError(t, env.settings.SetTheme(domain.ThemeDark))
	fresh := NewSettingsService(env.store, nil)
	fresh.Hydrate()
	assert.Equal(t, domain.ThemeDark, fresh.Theme())
}

func TestSettings_RejectsUnknownTheme(t *testing.T) {
	env := newTestEnv(t)

	err := env.settings.SetTheme(domain.Theme("sepia"))
	assert.Error(t, err)
	assert.Equal(t, domain.ThemeLight, env.settings.Theme())
}
