package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/domain"
)

func TestFavorites_ToggleIsSelfInverse(t *testing.T) {
	env := newTestEnv(t)

	book := domain.Book{ID: "book-1", Title: "1984", Author: "George Orwell", PriceMinor: 4599}

	env.favorites.Toggle(book)
	assert.True(t, env.favorites.IsFavorite("book-1"))
	assert.Equal(t, 1, env.favorites.Count())

	env.favorites.Toggle(book)
	assert.False(t, env.favorites.IsFavorite("book-1"))
	assert.Equal(t, 0, env.favorites.Count())
}

func TestFavorites_KeepsFullSnapshot(t *testing.T) {
	env := newTestEnv(t)

	book := domain.Book{
		ID:         "book-4",
		Title:      "Dune",
		Author:     "Frank Herbert",
		PriceMinor: 6599,
		Rating:     4.6,
		Category:   "Bilim Kurgu",
	}
	env.favorites.Toggle(book)

	list := env.favorites.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, "Frank Herbert", list[0].Author)
	assert.Equal(t, int64(6599), list[0].PriceMinor)
	assert.True(t, list[0].IsFavorite)
}

func TestFavorites_SurvivesRestart(t *testing.T) {
	env := newTestEnv(t)

	env.favorites.Toggle(domain.Book{ID: "book-1", Title: "1984"})
	env.favorites.Toggle(domain.Book{ID: "book-2", Title: "Atomik Alışkanlıklar"})

	fresh := NewFavoritesService(env.store, nil)
	fresh.Hydrate()

	assert.Equal(t, 2, fresh.Count())
	assert.True(t, fresh.IsFavorite("book-1"))
	assert.True(t, fresh.IsFavorite("book-2"))

	list := fresh.List()
	require.Len(t, list, 2)
	assert.Equal(t, "1984", list[0].Title)
}

func TestFavorites_ToggleSurvivesStoreFailure(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.Close())

	env.favorites.Toggle(domain.Book{ID: "book-1", Title: "1984"})
	assert.True(t, env.favorites.IsFavorite("book-1"))
}

func TestFavorites_ListReturnsCopy(t *testing.T) {
	env := newTestEnv(t)

	env.favorites.Toggle(domain.Book{ID: "book-1", Title: "1984"})

	list := env.favorites.List()
	list[0].Title = "mutated"

	assert.Equal(t, "1984", env.favorites.List()[0].Title)
}
