// Package query filters the catalog by free-text term and category.
//
// Everything here is pure: no state, no I/O, and the input slice is never
// modified. Results keep catalog order; there is no ranking.
package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Filter is a search term plus a category selection.
type Filter struct {
	Term     string          `json:"term"`
	Category domain.Category `json:"category"`
}

// IsZero reports whether the filter selects the whole catalog.
func (f Filter) IsZero() bool {
	return Normalize(f.Term) == "" && isAll(f.Category)
}

// Apply runs Query with this filter.
func (f Filter) Apply(books []domain.Book) []domain.Book {
	return Query(books, f.Term, f.Category)
}

// Normalize trims and lower-cases a term the way matching expects.
func Normalize(term string) string {
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(term))
}

// Query returns the books matching both the term and the category, in input order.
//
// A book matches the term when its title, author or category contains the
// normalized term. An empty term matches everything, and so do the empty
// category and "all". The result is never nil.
func Query(books []domain.Book, term string, category domain.Category) []domain.Book {
	needle := Normalize(term)
	anyCategory := isAll(category)

	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if !anyCategory && b.Category != category {
			continue
		}
		if needle != "" && !matches(b, needle) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matches(b domain.Book, needle string) bool {
	lower := cases.Lower(language.Und)
	for _, field := range [...]string{b.Title, b.Author, string(b.Category)} {
		if strings.Contains(lower.String(field), needle) {
			return true
		}
	}
	return false
}

func isAll(c domain.Category) bool {
	return c == "" || c == domain.CategoryAll
}
