package search

import (
	"strconv"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Document is the indexed form of a catalog book.
type Document struct {
	ID          string
	Title       string
	Author      string
	Description string
	Category    string
	Year        int
}

// FromBook converts a book into an index document.
func FromBook(b domain.Book) *Document {
	return &Document{
		ID:          strconv.Itoa(b.ID),
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Category:    string(b.Category),
		Year:        b.Year,
	}
}

// ToMap converts the document to the field names the mapping declares.
func (d *Document) ToMap() map[string]any {
	return map[string]any{
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"category":    d.Category,
		"year":        float64(d.Year),
	}
}
