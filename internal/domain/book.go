// Package domain contains the catalog entities shared by every bookshelf component.
package domain

import (
	"unicode"
	"unicode/utf8"
)

// Category names one of the catalog's fixed book categories.
type Category string

// CategoryAll is the pseudo-category that disables category filtering.
const CategoryAll Category = "all"

// Label is the display form of the category: first letter upper-cased.
func (c Category) Label() string {
	s := string(c)
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

// Book is one immutable catalog entry.
type Book struct {
	ID          int      `json:"id" yaml:"id" validate:"gt=0"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Author      string   `json:"author" yaml:"author" validate:"required"`
	Year        int      `json:"year" yaml:"year"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category" validate:"required"`
}

// BorrowRecord is a value snapshot of a Book taken when it was borrowed.
// Serialized flat: every Book field plus borrowedDate.
type BorrowRecord struct {
	Book
	BorrowedDate string `json:"borrowedDate"`
}

// NewBorrowRecord copies book into a new record stamped with date.
func NewBorrowRecord(book Book, date string) BorrowRecord {
	return BorrowRecord{Book: book, BorrowedDate: date}
}
