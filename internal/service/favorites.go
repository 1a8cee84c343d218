package service

import (
	"log/slog"
	"sync"

	"github.com/bookhaven/bookhaven/internal/domain"
	"github.com/bookhaven/bookhaven/internal/store"
)

// FavoritesService keeps the favorites set. It holds full book snapshots,
// so a favorite survives even when the catalog page it came from is gone.
// The persisted set is the source of truth; the catalog derives its
// per-book favorite flag from here.
type FavoritesService struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex
	books []domain.Book
}

// NewFavoritesService creates an empty favorites service. Call Hydrate to
// pull the persisted set.
func NewFavoritesService(st *store.Store, logger *slog.Logger) *FavoritesService {
	return &FavoritesService{
		store:  st,
		logger: logger,
		books:  []domain.Book{},
	}
}

// Hydrate loads the persisted favorites. Problems leave the set empty.
func (s *FavoritesService) Hydrate() {
	books, err := s.store.LoadFavorites()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load favorites", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
}

// Toggle adds the book to the favorites set, or removes it when already
// present. Toggling twice always lands back where it started. The whole set
// is persisted on every change; a failed write is logged, the in-memory set
// stays toggled.
func (s *FavoritesService) Toggle(book domain.Book) {
	s.mu.Lock()

	found := -1
	for i := range s.books {
		if s.books[i].ID == book.ID {
			found = i
			break
		}
	}

	if found >= 0 {
		s.books = append(s.books[:found], s.books[found+1:]...)
	} else {
		book.IsFavorite = true
		s.books = append(s.books, book)
	}

	snapshot := make([]domain.Book, len(s.books))
	copy(snapshot, s.books)
	s.mu.Unlock()

	if err := s.store.SaveFavorites(snapshot); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist favorites", "error", err)
	}
}

// IsFavorite reports whether the book is in the set.
func (s *FavoritesService) IsFavorite(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == bookID {
			return true
		}
	}
	return false
}

// List returns a copy of the favorites set in insertion order.
func (s *FavoritesService) List() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Count returns the number of favorites.
func (s *FavoritesService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}
