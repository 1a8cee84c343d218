package service

import (
	"cmp"
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/id"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// CatalogStatus describes the load state of the book list.
type CatalogStatus string

const (
	CatalogIdle    CatalogStatus = "idle"
	CatalogLoading CatalogStatus = "loading"
	CatalogLoaded  CatalogStatus = "loaded"
	CatalogFailed  CatalogStatus = "failed"
)

// CatalogService manages the paginated book list with its filters and sort
// order. Page one replaces the list; later pages append. Only one fetch runs
// at a time, and a fetch that was superseded while in flight is discarded.
type CatalogService struct {
	backend   *backend.Client
	favorites *FavoritesService
	validator *validation.Validator
	logger    *slog.Logger

	maxPages int

	mu          sync.Mutex
	status      CatalogStatus
	lastErr     error
	books       []domain.Book
	currentPage int
	filters     domain.FilterSpec
	sortSpec    domain.SortSpec
	generation  uint64

	// Titles collate in Turkish order, matching the catalog's language.
	collator *collate.Collator
}

// NewCatalogService creates an idle catalog.
func NewCatalogService(backendClient *backend.Client, favorites *FavoritesService, validator *validation.Validator, maxPages int, logger *slog.Logger) *CatalogService {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &CatalogService{
		backend:   backendClient,
		favorites: favorites,
		validator: validator,
		logger:    logger,
		maxPages:  maxPages,
		status:    CatalogIdle,
		sortSpec:  domain.DefaultSort(),
		collator:  collate.New(language.Turkish),
	}
}

// FetchPage loads one page of the catalog. A fetch already in flight wins;
// the new request is dropped without error. Page one resets the list.
func (s *CatalogService) FetchPage(ctx context.Context, page int) error {
	if page < 1 {
		return domainerrors.Validation("page must be positive")
	}

	s.mu.Lock()
	if s.status == CatalogLoading {
		s.mu.Unlock()
		return nil
	}
	s.status = CatalogLoading
	s.lastErr = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	books, err := s.backend.FetchBooks(ctx, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A reset or newer fetch superseded this one while it was in flight.
	if gen != s.generation {
		return nil
	}

	if err != nil {
		s.status = CatalogFailed
		s.lastErr = err
		if s.logger != nil {
			s.logger.Warn("catalog fetch failed", "page", page, "error", err)
		}
		return err
	}

	if page == 1 {
		s.books = books
	} else {
		s.books = append(s.books, books...)
	}
	s.currentPage = page
	s.status = CatalogLoaded
	return nil
}

// LoadMore fetches the next page when one exists. A full catalog or an
// in-flight fetch makes it a no-op.
func (s *CatalogService) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.status == CatalogLoading || s.currentPage >= s.maxPages {
		s.mu.Unlock()
		return nil
	}
	next := s.currentPage + 1
	s.mu.Unlock()

	return s.FetchPage(ctx, next)
}

// Reset clears the list and cancels the result of any in-flight fetch.
func (s *CatalogService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = nil
	s.currentPage = 0
	s.status = CatalogIdle
	s.lastErr = nil
	s.generation++
}

// ApplyFilters replaces the active filter set. The stored books are
// untouched; filtering happens when the list is read.
func (s *CatalogService) ApplyFilters(filters domain.FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
}

// Filters returns the active filter set.
func (s *CatalogService) Filters() domain.FilterSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ApplySort replaces the sort order. Unknown fields or orders are rejected.
func (s *CatalogService) ApplySort(spec domain.SortSpec) error {
	if !spec.Valid() {
		return domainerrors.Validationf("unknown sort %q %q", spec.Field, spec.Order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortSpec = spec
	return nil
}

// Sort returns the active sort order.
func (s *CatalogService) Sort() domain.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortSpec
}

// Books returns the filtered, sorted view of the catalog. The favorite flag
// is derived from the favorites set on every read, so the two can never
// disagree. The sort is stable: equal keys keep their fetch order.
func (s *CatalogService) Books() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := make([]domain.Book, 0, len(s.books))
	for i := range s.books {
		if s.filters.Matches(&s.books[i]) {
			book := s.books[i]
			book.IsFavorite = s.favorites.IsFavorite(book.ID)
			view = append(view, book)
		}
	}

	s.sortLocked(view)
	return view
}

// AllBooks returns the unfiltered list in fetch order.
func (s *CatalogService) AllBooks() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	for i := range out {
		out[i].IsFavorite = s.favorites.IsFavorite(out[i].ID)
	}
	return out
}

// GetBook finds a book by ID in the loaded catalog.
func (s *CatalogService) GetBook(bookID string) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == bookID {
			book := s.books[i]
			book.IsFavorite = s.favorites.IsFavorite(book.ID)
			return &book, nil
		}
	}
	return nil, domainerrors.NotFoundf("book %s is not in the catalog", bookID)
}

// FeaturedBooks returns up to five highly rated books in fetch order.
func (s *CatalogService) FeaturedBooks() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	featured := make([]domain.Book, 0, 5)
	for i := range s.books {
		if s.books[i].Rating >= 4.0 {
			book := s.books[i]
			book.IsFavorite = s.favorites.IsFavorite(book.ID)
			featured = append(featured, book)
			if len(featured) == 5 {
				break
			}
		}
	}
	return featured
}

// RelatedBooks returns books sharing a category, excluding one ID.
func (s *CatalogService) RelatedBooks(category, excludeID string, limit int) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	related := make([]domain.Book, 0, limit)
	for i := range s.books {
		if s.books[i].Category != category || s.books[i].ID == excludeID {
			continue
		}
		book := s.books[i]
		book.IsFavorite = s.favorites.IsFavorite(book.ID)
		related = append(related, book)
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

// AddBookRequest describes a locally added book.
type AddBookRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Author      string  `json:"author" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	PriceMinor  int64   `json:"price_minor" validate:"gte=0"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Category    string  `json:"category" validate:"required,max=100"`
}

// AddBook appends a locally created book to the catalog.
func (s *CatalogService) AddBook(req AddBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate book ID").WithCause(err)
	}

	book := domain.Book{
		ID:          bookID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		PriceMinor:  req.PriceMinor,
		Rating:      req.Rating,
		Category:    req.Category,
	}

	s.mu.Lock()
	s.books = append(s.books, book)
	s.mu.Unlock()
	return &book, nil
}

// UpdateBook replaces a book in place, keeping its position.
func (s *CatalogService) UpdateBook(book domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == book.ID {
			s.books[i] = book
			return nil
		}
	}
	return domainerrors.NotFoundf("book %s is not in the catalog", book.ID)
}

// DeleteBook removes a book from the loaded catalog.
func (s *CatalogService) DeleteBook(bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == bookID {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return domainerrors.NotFoundf("book %s is not in the catalog", bookID)
}

// Status returns the load state.
func (s *CatalogService) Status() CatalogStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the last fetch error, or nil.
func (s *CatalogService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CurrentPage returns the highest page loaded so far, zero before any fetch.
func (s *CatalogService) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// HasMore reports whether another page can still be loaded.
func (s *CatalogService) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage < s.maxPages
}

// sortLocked orders the view by the active sort. The sort is stable,
// so equal keys keep their fetch order. Callers hold s.mu.
func (s *CatalogService) sortLocked(view []domain.Book) {
	field := s.sortSpec.Field
	desc := s.sortSpec.Order == domain.SortDesc

	sort.SliceStable(view, func(i, j int) bool {
		cmp := s.compareField(field, &view[i], &view[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func (s *CatalogService) compareField(field domain.SortField, a, b *domain.Book) int {
	switch field {
	case domain.SortByTitle:
		if cmp := s.collator.CompareString(a.Title, b.Title); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Title, b.Title)
	case domain.SortByPrice:
		return cmp.Compare(a.PriceMinor, b.PriceMinor)
	case domain.SortByRating:
		return cmp.Compare(a.Rating, b.Rating)
	case domain.SortByPublishYear:
		return cmp.Compare(a.PublishYear, b.PublishYear)
	case domain.SortByPageCount:
		return cmp.Compare(a.PageCount, b.PageCount)
	case domain.SortByPublishDate:
		return a.PublishDate.Compare(b.PublishDate)
	default:
		return 0
	}
}
