// Package domain contains the core types of the Bookhaven state layer.
package domain

import (
	"strings"
	"time"
)

// Book represents a catalog item.
// PriceMinor is in minor units (kuruş, cents) of the base currency.
// IsFavorite is derived from favorites membership when a book is read through
// the catalog view; it is never the source of truth.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	PriceMinor  int64     `json:"price_minor"`
	Rating      float64   `json:"rating"` // 0..5
	PageCount   int       `json:"page_count"`
	PublishYear int       `json:"publish_year"`
	PublishDate time.Time `json:"publish_date"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	CoverRef    string    `json:"cover_ref"`
	IsFree      bool      `json:"is_free"`
	IsFavorite  bool      `json:"is_favorite"`
	OwnerID     string    `json:"owner_id,omitempty"`
}

// FilterSpec is a set of optional predicates combined with AND semantics.
// A nil field means "no constraint".
type FilterSpec struct {
	Search        *string  `json:"search,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Language      *string  `json:"language,omitempty"`
	MinPriceMinor *int64   `json:"min_price_minor,omitempty"`
	MaxPriceMinor *int64   `json:"max_price_minor,omitempty"`
	MinYear       *int     `json:"min_year,omitempty"`
	MaxYear       *int     `json:"max_year,omitempty"`
	MinPages      *int     `json:"min_pages,omitempty"`
	MaxPages      *int     `json:"max_pages,omitempty"`
	IsFree        *bool    `json:"is_free,omitempty"`
	MinRating     *float64 `json:"min_rating,omitempty"`
}

// Matches reports whether the book satisfies every non-nil predicate.
// Search is a case-insensitive substring match over title, author and
// description.
func (f FilterSpec) Matches(b *Book) bool {
	if f.Search != nil {
		needle := strings.ToLower(strings.TrimSpace(*f.Search))
		if needle != "" {
			haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.Description)
			if !strings.Contains(haystack, needle) {
				return false
			}
		}
	}
	if f.Category != nil && b.Category != *f.Category {
		return false
	}
	if f.Language != nil && b.Language != *f.Language {
		return false
	}
	if f.MinPriceMinor != nil && b.PriceMinor < *f.MinPriceMinor {
		return false
	}
	if f.MaxPriceMinor != nil && b.PriceMinor > *f.MaxPriceMinor {
		return false
	}
	if f.MinYear != nil && b.PublishYear < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && b.PublishYear > *f.MaxYear {
		return false
	}
	if f.MinPages != nil && b.PageCount < *f.MinPages {
		return false
	}
	if f.MaxPages != nil && b.PageCount > *f.MaxPages {
		return false
	}
	if f.IsFree != nil && b.IsFree != *f.IsFree {
		return false
	}
	if f.MinRating != nil && b.Rating < *f.MinRating {
		return false
	}
	return true
}

// SortField identifies which book attribute a sort compares.
type SortField string

// Sortable fields.
const (
	SortByTitle       SortField = "title"
	SortByPrice       SortField = "price"
	SortByRating      SortField = "rating"
	SortByPublishYear SortField = "publish_year"
	SortByPageCount   SortField = "page_count"
	SortByPublishDate SortField = "publish_date"
)

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec describes the single active sort. Exactly one sort is active at a
// time; ties keep their prior relative order (stable sort).
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort is the sort applied before the consumer chooses one.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByTitle, Order: SortAsc}
}

// Valid reports whether both field and order are recognized values.
func (s SortSpec) Valid() bool {
	switch s.Field {
	case SortByTitle, SortByPrice, SortByRating, SortByPublishYear, SortByPageCount, SortByPublishDate:
	default:
		return false
	}
	return s.Order == SortAsc || s.Order == SortDesc
}
