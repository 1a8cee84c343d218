package domain

import "time"

// Comment is a user review attached to a book. The collection is append-only
// apart from explicit update and delete operations.
type Comment struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"` // 1..5
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
