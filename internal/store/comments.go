package store

import (
	"fmt"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// SaveComments replaces the stored comment list for a book.
func (s *Store) SaveComments(bookID string, comments []domain.Comment) error {
	if comments == nil {
		comments = []domain.Comment{}
	}
	if err := s.set(keyCommentsPrefix+bookID, comments); err != nil {
		return fmt.Errorf("save comments for %s: %w", bookID, err)
	}
	return nil
}

// LoadComments returns the stored comments for a book in insertion order,
// or an empty slice when the book has none.
func (s *Store) LoadComments(bookID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	found, err := s.get(keyCommentsPrefix+bookID, &comments)
	if err != nil {
		return nil, fmt.Errorf("load comments for %s: %w", bookID, err)
	}
	if !found || comments == nil {
		return []domain.Comment{}, nil
	}
	return comments, nil
}

// DeleteComments removes every stored comment for a book.
func (s *Store) DeleteComments(bookID string) error {
	return s.delete(keyCommentsPrefix + bookID)
}
