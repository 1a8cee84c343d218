package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// The first page opens with a curated shelf; the rest of the catalog is
// generated deterministically so pagination is stable across calls.
var curatedBooks = []domain.Book{
	{
		ID:          "book-1",
		Title:       "1984",
		Author:      "George Orwell",
		Description: "Distopik bir gelecekte geçen, gözetim toplumunu ve totaliter rejimi eleştiren başyapıt.",
		PriceMinor:  4599,
		Rating:      4.8,
		PublishYear: 1949,
		PageCount:   328,
		PublishDate: time.Date(1949, 6, 8, 0, 0, 0, 0, time.UTC),
		Category:    "Roman",
		Language:    "tr",
		CoverRef:    "/images/books/1984.jpg",
	},
	{
		ID:          "book-2",
		Title:       "Atomik Alışkanlıklar",
		Author:      "James Clear",
		Description: "Küçük değişikliklerle büyük sonuçlar elde etmenin bilimsel yöntemlerini anlatan kişisel gelişim kitabı.",
		PriceMinor:  5299,
		Rating:      4.9,
		PublishYear: 2018,
		PageCount:   320,
		PublishDate: time.Date(2018, 10, 16, 0, 0, 0, 0, time.UTC),
		Category:    "Kişisel Gelişim",
		Language:    "tr",
		CoverRef:    "/images/books/atomic-habits.jpg",
	},
	{
		ID:          "book-3",
		Title:       "Suç ve Ceza",
		Author:      "Fyodor Dostoyevski",
		Description: "İnsanın karanlık yönlerini ve vicdan kavramını derinlemesine inceleyen psikolojik roman.",
		PriceMinor:  4999,
		Rating:      4.7,
		PublishYear: 1866,
		PageCount:   671,
		PublishDate: time.Date(1866, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:    "Roman",
		Language:    "tr",
		CoverRef:    "/images/books/crime-and-punishment.jpg",
	},
	{
		ID:          "book-4",
		Title:       "Dune",
		Author:      "Frank Herbert",
		Description: "Bilim kurgu edebiyatının en önemli eserlerinden biri.",
		PriceMinor:  6599,
		Rating:      4.6,
		PublishYear: 1965,
		PageCount:   412,
		PublishDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		Category:    "Bilim Kurgu",
		Language:    "tr",
		CoverRef:    "/images/books/dune.jpg",
	},
	{
		ID:          "book-5",
		Title:       "Yüzüklerin Efendisi",
		Author:      "J.R.R. Tolkien",
		Description: "Fantastik edebiyatın başyapıtı, epik bir macera.",
		PriceMinor:  8999,
		Rating:      4.9,
		PublishYear: 1954,
		PageCount:   1178,
		PublishDate: time.Date(1954, 7, 29, 0, 0, 0, 0, time.UTC),
		Category:    "Fantastik",
		Language:    "tr",
		CoverRef:    "/images/books/lord-of-the-rings.jpg",
	},
}

var fillerCategories = []string{"Roman", "Bilim Kurgu", "Fantastik", "Kişisel Gelişim", "Tarih"}

// FetchBooks returns one page of the catalog, 1-indexed. Pages past the end
// of the catalog are empty. The same page always yields the same books.
func (c *Client) FetchBooks(ctx context.Context, page int) ([]domain.Book, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	if page < 1 || page > c.cfg.MaxPages {
		return []domain.Book{}, nil
	}

	books := make([]domain.Book, 0, c.cfg.ItemsPerPage)
	start := (page - 1) * c.cfg.ItemsPerPage
	for i := range c.cfg.ItemsPerPage {
		n := start + i // zero-based catalog position
		if n < len(curatedBooks) {
			books = append(books, curatedBooks[n])
			continue
		}
		books = append(books, fillerBook(n+1))
	}

	return books, nil
}

// fillerBook generates catalog entry n deterministically. The arithmetic is
// arbitrary but fixed, spreading prices, ratings and categories around.
func fillerBook(n int) domain.Book {
	year := 1950 + (n*7)%74
	return domain.Book{
		ID:          fmt.Sprintf("book-%d", n),
		Title:       fmt.Sprintf("Kitap %d", n),
		Author:      fmt.Sprintf("Yazar %d", n),
		Description: "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		PriceMinor:  int64(2000 + (n*3700)%20000),
		Rating:      3.5 + float64(n%11)/10,
		PublishYear: year,
		PageCount:   120 + (n*53)%480,
		PublishDate: time.Date(year, time.Month(1+n%12), 1+n%28, 0, 0, 0, 0, time.UTC),
		Category:    fillerCategories[n%len(fillerCategories)],
		Language:    "tr",
		CoverRef:    "/images/books/placeholder.jpg",
		IsFree:      n%17 == 0,
	}
}
