// Package browse holds per-client browsing state and the five interaction handlers that change it.
//
// A Session owns the current filter, the rendered grid and the open detail
// view. Handlers are plain methods so they can be driven by HTTP, tests or
// anything else that detects the user's intent.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/query"
	"github.com/bookshelfapp/bookshelf-server/internal/render"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	All() []domain.Book
	Get(id int) (domain.Book, bool)
	HasCategory(c domain.Category) bool
}

// Ledger is what sessions need from the borrow ledger.
type Ledger interface {
	IsBorrowed(id int) bool
	Borrow(ctx context.Context, book domain.Book) (domain.BorrowRecord, error)
	History() []domain.BorrowRecord
}

// Borrow outcome statuses.
const (
	StatusBorrowed        = "borrowed"
	StatusAlreadyBorrowed = "already_borrowed"
)

// BorrowOutcome is what the client shows after confirming a borrow.
type BorrowOutcome struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Warning string               `json:"warning,omitempty"`
	Record  *domain.BorrowRecord `json:"record,omitempty"`
	Detail  render.DetailView    `json:"detail"`
	History render.HistoryView   `json:"history"`
}

// Page is a full snapshot of what the client should be displaying.
type Page struct {
	SessionID string             `json:"sessionId"`
	Filter    query.Filter       `json:"filter"`
	Grid      render.GridView    `json:"grid"`
	Detail    *render.DetailView `json:"detail,omitempty"`
	History   render.HistoryView `json:"history"`
}

// Event payloads, checked before any state changes.
type (
	searchEvent struct {
		Text string `json:"text" validate:"max=200"`
	}
	categoryEvent struct {
		Category string `json:"category" validate:"max=64"`
	}
	bookEvent struct {
		ID int `json:"id" validate:"gt=0"`
	}
)

// Session is one client's browsing state. All handlers are serialized.
type Session struct {
	id        string
	catalog   Catalog
	ledger    Ledger
	validator *validation.Validator
	logger    *slog.Logger

	mu       sync.Mutex
	filter   query.Filter
	grid     render.GridView
	detail   *render.DetailView
	lastUsed time.Time
}

// NewSession creates a session showing the whole catalog with nothing selected.
func NewSession(id string, cat Catalog, led Ledger, v *validation.Validator, logger *slog.Logger) *Session {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		id:        id,
		catalog:   cat,
		ledger:    led,
		validator: v,
		logger:    logger.With("session_id", id),
		filter:    query.Filter{Category: domain.CategoryAll},
		lastUsed:  time.Now(),
	}
	s.grid = render.Grid(s.filter.Apply(cat.All()))
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// SubmitSearch replaces the search term and re-renders the grid.
// The category selection is kept.
func (s *Session) SubmitSearch(_ context.Context, text string) (render.GridView, error) {
	if err := s.validator.Validate(searchEvent{Text: text}); err != nil {
		return render.GridView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter.Term = text
	s.regrid()
	s.logger.Debug("search submitted", "term", query.Normalize(text), "results", len(s.grid.Cards))
	return s.grid, nil
}

// SelectCategory replaces the category selection and re-renders the grid.
// The search term is kept.
func (s *Session) SelectCategory(_ context.Context, category domain.Category) (render.GridView, error) {
	if err := s.validator.Validate(categoryEvent{Category: string(category)}); err != nil {
		return render.GridView{}, err
	}
	if !s.catalog.HasCategory(category) {
		return render.GridView{}, errors.Validationf("unknown category %q", category)
	}
	if category == "" {
		category = domain.CategoryAll
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter.Category = category
	s.regrid()
	s.logger.Debug("category selected", "category", category, "results", len(s.grid.Cards))
	return s.grid, nil
}

// SelectBook opens the detail view for id. Whether it can be borrowed is read once, now.
func (s *Session) SelectBook(_ context.Context, id int) (render.DetailView, error) {
	if err := s.validator.Validate(bookEvent{ID: id}); err != nil {
		return render.DetailView{}, err
	}
	book, ok := s.catalog.Get(id)
	if !ok {
		return render.DetailView{}, errors.NotFoundf("book %d not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view := render.Detail(book, s.ledger.IsBorrowed(id))
	s.detail = &view
	return view, nil
}

// ConfirmBorrow borrows the book shown in the open detail view.
//
// A book that turns out to be borrowed already is not an error: the control
// is switched to its borrowed state and the outcome says so. If the borrow
// could not be saved the outcome is still returned, with a warning, next to
// the PERSISTENCE_UNAVAILABLE error.
func (s *Session) ConfirmBorrow(ctx context.Context, id int) (BorrowOutcome, error) {
	if err := s.validator.Validate(bookEvent{ID: id}); err != nil {
		return BorrowOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detail == nil {
		return BorrowOutcome{}, errors.NoSelection("no book is open")
	}
	if s.detail.ID != id {
		return BorrowOutcome{}, errors.Validationf("book %d is not the open book", id)
	}

	book := s.detail.Book
	rec, err := s.ledger.Borrow(ctx, book)
	switch {
	case errors.Is(err, errors.ErrAlreadyBorrowed):
		s.detail.Control = render.Control(true)
		return BorrowOutcome{
			Status:  StatusAlreadyBorrowed,
			Message: fmt.Sprintf("%s is already borrowed.", book.Title),
			Detail:  *s.detail,
			History: render.History(s.ledger.History()),
		}, nil

	case errors.Is(err, errors.ErrPersistenceUnavailable):
		s.detail.Control = render.Control(true)
		s.logger.Warn("borrow not persisted", "book_id", id, "error", err)
		return BorrowOutcome{
			Status:  StatusBorrowed,
			Message: fmt.Sprintf("%s has been borrowed!", book.Title),
			Warning: "Your borrow could not be saved and may be lost on restart.",
			Record:  &rec,
			Detail:  *s.detail,
			History: render.History(s.ledger.History()),
		}, err

	case err != nil:
		return BorrowOutcome{}, fmt.Errorf("borrow book %d: %w", id, err)
	}

	s.detail.Control = render.Control(true)
	return BorrowOutcome{
		Status:  StatusBorrowed,
		Message: fmt.Sprintf("%s has been borrowed!", book.Title),
		Record:  &rec,
		Detail:  *s.detail,
		History: render.History(s.ledger.History()),
	}, nil
}

// DismissDetail closes the detail view. Dismissing with nothing open is a no-op.
func (s *Session) DismissDetail(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = nil
}

// Snapshot returns the current page. The open detail view is returned as
// captured, not recomputed.
func (s *Session) Snapshot() Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := Page{
		SessionID: s.id,
		Filter:    s.filter,
		Grid:      s.grid,
		History:   render.History(s.ledger.History()),
	}
	if s.detail != nil {
		d := *s.detail
		page.Detail = &d
	}
	return page
}

// regrid recomputes the grid from the current filter. Caller holds s.mu.
func (s *Session) regrid() {
	s.grid = render.Grid(s.filter.Apply(s.catalog.All()))
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
