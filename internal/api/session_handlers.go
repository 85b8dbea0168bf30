package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/browse"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/render"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Start browsing",
		Description:   "Creates a browse session showing the whole catalog with nothing selected",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{sessionId}",
		Summary:     "Get session",
		Description: "Returns what the session is currently displaying",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{sessionId}/search",
		Summary:     "Submit search",
		Description: "Replaces the search term and re-renders the grid; the category is kept",
		Tags:        []string{"Sessions"},
	}, s.handleSubmitSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{sessionId}/category",
		Summary:     "Select category",
		Description: "Replaces the category and re-renders the grid; the search term is kept",
		Tags:        []string{"Sessions"},
	}, s.handleSelectCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{sessionId}/select",
		Summary:     "Open book",
		Description: "Opens the detail view for a book",
		Tags:        []string{"Sessions"},
	}, s.handleSelectBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmBorrow",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{sessionId}/borrow",
		Summary:     "Borrow book",
		Description: "Borrows the open book. A book that is already borrowed is reported in the outcome, not as an error.",
		Tags:        []string{"Sessions"},
		Middlewares: huma.Middlewares{s.borrowRateLimit},
	}, s.handleConfirmBorrow)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissDetail",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{sessionId}/dismiss",
		Summary:     "Close detail",
		Description: "Closes the open detail view; a no-op when nothing is open",
		Tags:        []string{"Sessions"},
	}, s.handleDismissDetail)
}

// === DTOs ===

// SessionInput identifies a browse session.
type SessionInput struct {
	SessionID string `path:"sessionId" maxLength:"64" doc:"Browse session ID"`
}

// PageOutput wraps a session snapshot for Huma.
type PageOutput struct {
	Body browse.Page
}

// SubmitSearchInput carries a search-submit event.
type SubmitSearchInput struct {
	SessionID string `path:"sessionId" maxLength:"64" doc:"Browse session ID"`
	Body      struct {
		Text string `json:"text" doc:"Raw search text; empty clears the search"`
	}
}

// SelectCategoryInput carries a category-select event.
type SelectCategoryInput struct {
	SessionID string `path:"sessionId" maxLength:"64" doc:"Browse session ID"`
	Body      struct {
		Category string `json:"category" doc:"Category value; all shows every category"`
	}
}

// BookEventInput carries a book-select or borrow-confirm event.
type BookEventInput struct {
	SessionID string `path:"sessionId" maxLength:"64" doc:"Browse session ID"`
	Body      struct {
		ID int `json:"id" doc:"Book ID"`
	}
}

// BorrowOutput wraps a borrow outcome for Huma.
type BorrowOutput struct {
	Body browse.BorrowOutcome
}

// === Handlers ===

func (s *Server) handleCreateSession(_ context.Context, _ *struct{}) (*PageOutput, error) {
	sess, err := s.services.Sessions.Create()
	if err != nil {
		return nil, toAPIError(err)
	}
	return &PageOutput{Body: sess.Snapshot()}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *SessionInput) (*PageOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &PageOutput{Body: sess.Snapshot()}, nil
}

func (s *Server) handleSubmitSearch(ctx context.Context, input *SubmitSearchInput) (*GridOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}
	grid, err := sess.SubmitSearch(ctx, input.Body.Text)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &GridOutput{Body: grid}, nil
}

func (s *Server) handleSelectCategory(ctx context.Context, input *SelectCategoryInput) (*GridOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}
	grid, err := sess.SelectCategory(ctx, domain.Category(input.Body.Category))
	if err != nil {
		return nil, toAPIError(err)
	}
	return &GridOutput{Body: grid}, nil
}

func (s *Server) handleSelectBook(ctx context.Context, input *BookEventInput) (*DetailOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}
	var view render.DetailView
	if view, err = sess.SelectBook(ctx, input.Body.ID); err != nil {
		return nil, toAPIError(err)
	}
	return &DetailOutput{Body: view}, nil
}

func (s *Server) handleConfirmBorrow(ctx context.Context, input *BookEventInput) (*BorrowOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}

	outcome, err := sess.ConfirmBorrow(ctx, input.Body.ID)
	switch {
	case errors.Is(err, errors.ErrPersistenceUnavailable):
		// The borrow holds for this process; the outcome carries the warning.
		s.logger.Warn("Borrow accepted without persistence",
			"session_id", input.SessionID,
			"book_id", input.Body.ID,
			"error", err,
		)
	case err != nil:
		return nil, toAPIError(err)
	}

	return &BorrowOutput{Body: outcome}, nil
}

func (s *Server) handleDismissDetail(ctx context.Context, input *SessionInput) (*PageOutput, error) {
	sess, err := s.services.Sessions.Get(input.SessionID)
	if err != nil {
		return nil, toAPIError(err)
	}
	sess.DismissDetail(ctx)
	return &PageOutput{Body: sess.Snapshot()}, nil
}
