package store

import (
	"fmt"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// SaveFavorites persists the whole favorites set. The set is written
// atomically; a partial favorites list never hits disk.
func (s *Store) SaveFavorites(books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}
	if err := s.set(keyFavorites, books); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// LoadFavorites returns the persisted favorites set, or an empty slice when
// nothing has been saved yet.
func (s *Store) LoadFavorites() ([]domain.Book, error) {
	var books []domain.Book
	found, err := s.get(keyFavorites, &books)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !found || books == nil {
		return []domain.Book{}, nil
	}
	return books, nil
}
