package service

import (
	"log/slog"
	"time"

	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/id"
	"github.com/bookhaven/bookhaven/internal/store"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// CommentsService manages per-book reviews. Lists are append-only on add;
// edits and deletes work on individual comments by ID.
type CommentsService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger

	now func() time.Time
}

// NewCommentsService creates a comments service.
func NewCommentsService(st *store.Store, validator *validation.Validator, logger *slog.Logger) *CommentsService {
	return &CommentsService{
		store:     st,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// AddCommentRequest describes a new review.
type AddCommentRequest struct {
	BookID     string `json:"book_id" validate:"required"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Text       string `json:"text" validate:"required,max=2000"`
	Rating     int    `json:"rating" validate:"gte=1,lte=5"`
}

// Add appends a review to a book's list and persists it.
func (s *CommentsService) Add(req AddCommentRequest) (*domain.Comment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate comment ID").WithCause(err)
	}

	now := s.now()
	comment := domain.Comment{
		ID:         commentID,
		BookID:     req.BookID,
		UserID:     req.UserID,
		AuthorName: req.AuthorName,
		Text:       req.Text,
		Rating:     req.Rating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	comments, err := s.store.LoadComments(req.BookID)
	if err != nil {
		return nil, domainerrors.Storage("failed to load comments").WithCause(err)
	}
	comments = append(comments, comment)

	if err := s.store.SaveComments(req.BookID, comments); err != nil {
		return nil, domainerrors.Storage("failed to persist comments").WithCause(err)
	}
	return &comment, nil
}

// UpdateCommentRequest edits an existing review.
type UpdateCommentRequest struct {
	BookID    string `json:"book_id" validate:"required"`
	CommentID string `json:"comment_id" validate:"required"`
	Text      string `json:"text" validate:"required,max=2000"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
}

// Update edits a review in place. The creation timestamp is kept.
func (s *CommentsService) Update(req UpdateCommentRequest) (*domain.Comment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	comments, err := s.store.LoadComments(req.BookID)
	if err != nil {
		return nil, domainerrors.Storage("failed to load comments").WithCause(err)
	}

	for i := range comments {
		if comments[i].ID != req.CommentID {
			continue
		}
		comments[i].Text = req.Text
		comments[i].Rating = req.Rating
		comments[i].UpdatedAt = s.now()

		if err := s.store.SaveComments(req.BookID, comments); err != nil {
			return nil, domainerrors.Storage("failed to persist comments").WithCause(err)
		}
		updated := comments[i]
		return &updated, nil
	}

	return nil, domainerrors.NotFoundf("comment %s not found on book %s", req.CommentID, req.BookID)
}

// Delete removes a single review from a book's list.
func (s *CommentsService) Delete(bookID, commentID string) error {
	comments, err := s.store.LoadComments(bookID)
	if err != nil {
		return domainerrors.Storage("failed to load comments").WithCause(err)
	}

	for i := range comments {
		if comments[i].ID != commentID {
			continue
		}
		comments = append(comments[:i], comments[i+1:]...)
		if err := s.store.SaveComments(bookID, comments); err != nil {
			return domainerrors.Storage("failed to persist comments").WithCause(err)
		}
		return nil
	}

	return domainerrors.NotFoundf("comment %s not found on book %s", commentID, bookID)
}

// ListByBook returns a book's reviews in insertion order.
func (s *CommentsService) ListByBook(bookID string) ([]domain.Comment, error) {
	comments, err := s.store.LoadComments(bookID)
	if err != nil {
		return nil, domainerrors.Storage("failed to load comments").WithCause(err)
	}
	return comments, nil
}
