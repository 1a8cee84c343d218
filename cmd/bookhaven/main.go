// Package main provides the entry point for the Bookhaven state demo.
// It boots the full service stack, walks through a typical user flow and
// then waits for a shutdown signal while the background jobs run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven/internal/di"
	"github.com/bookhaven/bookhaven/internal/di/providers"
	"github.com/bookhaven/bookhaven/internal/logger"
	"github.com/bookhaven/bookhaven/internal/service"
)

func main() {
	injector := di.NewContainer()

	ctx := context.Background()
	if err := di.Bootstrap(ctx, injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	app := do.MustInvoke[*service.App](injector)

	if err := demo(ctx, app, log); err != nil {
		log.Error("Demo flow failed", "error", err)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The store uses a wrapper type, so it needs an explicit close.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	log.Info("Goodbye")
}

// demo exercises the state layer end to end: sign in, browse, filter,
// favorite, review, convert prices.
func demo(ctx context.Context, app *service.App, log *logger.Logger) error {
	if !app.IsAuthenticated() {
		_, err := app.Session.Login(ctx, service.LoginRequest{
			Email:    "demo@bookhaven.dev",
			Password: "Passw0rd",
		})
		if err != nil {
			return err
		}
	}
	log.Info("Signed in", "user", app.CurrentUser().DisplayName)

	if err := app.Catalog.FetchPage(ctx, 1); err != nil {
		return err
	}
	if err := app.Catalog.LoadMore(ctx); err != nil {
		return err
	}

	if _, err := app.Currency.FetchRates(ctx); err != nil {
		return err
	}
	if warning := app.Currency.Warning(); warning != "" {
		log.Warn("Currency degraded", "warning", warning)
	}

	books := app.Books()
	log.Info("Catalog loaded", "books", len(books), "has_more", app.Catalog.HasMore())
	for _, book := range books[:min(5, len(books))] {
		log.Info("Book",
			"title", book.Title,
			"author", book.Author,
			"price", app.DisplayPrice(&book),
			"favorite", book.IsFavorite,
		)
	}

	if len(books) > 0 {
		first := books[0]
		app.Favorites.Toggle(first)
		log.Info("Toggled favorite", "title", first.Title, "favorites", app.Favorites.Count())

		comment, err := app.Comments.Add(service.AddCommentRequest{
			BookID:     first.ID,
			UserID:     app.CurrentUser().ID,
			AuthorName: app.CurrentUser().DisplayName,
			Text:       "Tek kelimeyle harika.",
			Rating:     5,
		})
		if err != nil {
			return err
		}
		log.Info("Review added", "book", first.Title, "comment_id", comment.ID)
	}

	log.Info("State ready",
		"theme", app.Theme(),
		"currency", app.SelectedCurrency(),
	)
	return nil
}
