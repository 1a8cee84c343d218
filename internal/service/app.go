// Package service implements the application's state layer: session
// lifecycle, the paginated catalog, currency rates, favorites, reviews and
// UI settings. Each concern lives in its own service; App ties them
// together into the surface the rest of the program talks to.
package service

import (
	"context"
	"log/slog"

	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
)

// App is the aggregate root over all state services. It exposes the
// cross-cutting reads a UI needs without reaching into individual services.
type App struct {
	Session   *SessionService
	Catalog   *CatalogService
	Currency  *CurrencyService
	Favorites *FavoritesService
	Comments  *CommentsService
	Settings  *SettingsService

	logger *slog.Logger
}

// NewApp wires the services into one facade.
func NewApp(
	session *SessionService,
	catalog *CatalogService,
	currency *CurrencyService,
	favorites *FavoritesService,
	comments *CommentsService,
	settings *SettingsService,
	logger *slog.Logger,
) *App {
	return &App{
		Session:   session,
		Catalog:   catalog,
		Currency:  currency,
		Favorites: favorites,
		Comments:  comments,
		Settings:  settings,
		logger:    logger,
	}
}

// Hydrate restores all persisted state. Called once at startup, before any
// reads. Hydration failures degrade to defaults rather than aborting boot.
func (a *App) Hydrate(ctx context.Context) {
	a.Favorites.Hydrate()
	a.Currency.Hydrate()
	a.Settings.Hydrate()
	a.Session.Hydrate(ctx)

	if a.logger != nil {
		a.logger.Info("application state hydrated",
			"authenticated", a.Session.IsAuthenticated(),
			"favorites", a.Favorites.Count(),
			"theme", a.Settings.Theme(),
		)
	}
}

// IsAuthenticated reports whether a user is logged in.
func (a *App) IsAuthenticated() bool {
	return a.Session.IsAuthenticated()
}

// CurrentUser returns the logged-in user, or nil.
func (a *App) CurrentUser() *domain.User {
	return a.Session.CurrentUser()
}

// Books returns the filtered, sorted catalog view.
func (a *App) Books() []domain.Book {
	return a.Catalog.Books()
}

// IsFavorite reports whether a book is in the favorites set.
func (a *App) IsFavorite(bookID string) bool {
	return a.Favorites.IsFavorite(bookID)
}

// ToggleFavorite flips a book's favorite membership by ID. The snapshot
// comes from the loaded catalog; a book that has already left the catalog
// can still be un-favorited from the stored copy.
func (a *App) ToggleFavorite(bookID string) error {
	if book, err := a.Catalog.GetBook(bookID); err == nil {
		a.Favorites.Toggle(*book)
		return nil
	}

	for _, book := range a.Favorites.List() {
		if book.ID == bookID {
			a.Favorites.Toggle(book)
			return nil
		}
	}
	return domainerrors.NotFoundf("book %s is not in the catalog or favorites", bookID)
}

// SelectedCurrency returns the active display currency.
func (a *App) SelectedCurrency() string {
	return a.Currency.SelectedCurrency()
}

// DisplayPrice formats a book's price in the selected currency.
func (a *App) DisplayPrice(book *domain.Book) string {
	if book.IsFree {
		return "Free"
	}
	return a.Currency.DisplayPrice(book.PriceMinor)
}

// Theme returns the active UI theme.
func (a *App) Theme() domain.Theme {
	return a.Settings.Theme()
}
