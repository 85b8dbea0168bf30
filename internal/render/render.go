// Package render projects catalog and ledger state into the three views a client draws:
// the book grid, the open book's detail view and the borrow history.
package render

import (
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Placeholder texts shown instead of an empty list.
const (
	EmptyGridMessage    = "No books found matching your criteria."
	EmptyHistoryMessage = "No books borrowed yet. Start exploring!"
)

// Borrow control labels.
const (
	LabelBorrow   = "Borrow Book"
	LabelBorrowed = "Borrowed"
)

// Card is one book tile in the grid.
type Card struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Year          int    `json:"year"`
	Image         string `json:"image"`
	CategoryLabel string `json:"categoryLabel"`
}

// GridView is the rendered query result. Empty is set instead of an empty card list.
type GridView struct {
	Cards       []Card `json:"cards"`
	Empty       bool   `json:"empty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// BorrowControl is the detail view's borrow button.
type BorrowControl struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// DetailView is the expanded single-book display.
type DetailView struct {
	domain.Book
	CategoryLabel string        `json:"categoryLabel"`
	Control       BorrowControl `json:"control"`
}

// HistoryItem is one row of the borrow history.
type HistoryItem struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Image        string `json:"image"`
	BorrowedDate string `json:"borrowedDate"`
}

// HistoryView lists every borrow in the order it happened.
type HistoryView struct {
	Items       []HistoryItem `json:"items"`
	Empty       bool          `json:"empty"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// Grid renders one card per book, preserving order.
func Grid(books []domain.Book) GridView {
	if len(books) == 0 {
		return GridView{Cards: []Card{}, Empty: true, Placeholder: EmptyGridMessage}
	}

	cards := make([]Card, len(books))
	for i, b := range books {
		cards[i] = Card{
			ID:            b.ID,
			Title:         b.Title,
			Author:        b.Author,
			Year:          b.Year,
			Image:         b.Image,
			CategoryLabel: b.Category.Label(),
		}
	}
	return GridView{Cards: cards}
}

// Detail renders book with a control reflecting whether it is already borrowed.
func Detail(book domain.Book, borrowed bool) DetailView {
	return DetailView{
		Book:          book,
		CategoryLabel: book.Category.Label(),
		Control:       Control(borrowed),
	}
}

// Control returns the borrow control state.
func Control(borrowed bool) BorrowControl {
	if borrowed {
		return BorrowControl{Label: LabelBorrowed, Disabled: true}
	}
	return BorrowControl{Label: LabelBorrow}
}

// History renders records in the order given.
func History(records []domain.BorrowRecord) HistoryView {
	if len(records) == 0 {
		return HistoryView{Items: []HistoryItem{}, Empty: true, Placeholder: EmptyHistoryMessage}
	}

	items := make([]HistoryItem, len(records))
	for i, r := range records {
		items[i] = HistoryItem{
			ID:           r.ID,
			Title:        r.Title,
			Author:       r.Author,
			Image:        r.Image,
			BorrowedDate: r.BorrowedDate,
		}
	}
	return HistoryView{Items: items}
}
