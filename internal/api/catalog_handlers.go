package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/query"
	"github.com/bookshelfapp/bookshelf-server/internal/render"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Get catalog",
		Description: "Returns every book in catalog order together with the category list",
		Tags:        []string{"Catalog"},
	}, s.handleGetCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/categories",
		Summary:     "List categories",
		Description: "Returns the category selector options, starting with All",
		Tags:        []string{"Catalog"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "Filter books",
		Description: "Renders the grid for a search term and category without touching any session",
		Tags:        []string{"Catalog"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Renders the detail view for a book against the current ledger",
		Tags:        []string{"Catalog"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Borrow history",
		Description: "Renders every borrow record in borrow order",
		Tags:        []string{"Ledger"},
	}, s.handleGetHistory)
}

// === DTOs ===

// CategoryOption is one entry in the category selector.
type CategoryOption struct {
	Value string `json:"value" doc:"Category value used in filters"`
	Label string `json:"label" doc:"Display label"`
}

// CatalogResponse contains the full catalog.
type CatalogResponse struct {
	Books      []domain.Book    `json:"books" doc:"Books in catalog order"`
	Categories []CategoryOption `json:"categories" doc:"Category selector options"`
}

// CatalogOutput wraps the catalog response for Huma.
type CatalogOutput struct {
	Body CatalogResponse
}

// CategoriesOutput wraps the category list for Huma.
type CategoriesOutput struct {
	Body []CategoryOption
}

// ListBooksInput contains the grid filter.
type ListBooksInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Search term matched against title, author and category"`
	Category string `query:"category" maxLength:"64" doc:"Category to show; empty or all for every category"`
}

// GridOutput wraps a rendered grid for Huma.
type GridOutput struct {
	Body render.GridView
}

// GetBookInput identifies a book.
type GetBookInput struct {
	ID int `path:"id" minimum:"1" doc:"Book ID"`
}

// DetailOutput wraps a rendered detail view for Huma.
type DetailOutput struct {
	Body render.DetailView
}

// HistoryOutput wraps the rendered history for Huma.
type HistoryOutput struct {
	Body render.HistoryView
}

// === Handlers ===

func (s *Server) handleGetCatalog(_ context.Context, _ *struct{}) (*CatalogOutput, error) {
	return &CatalogOutput{
		Body: CatalogResponse{
			Books:      s.services.Catalog.All(),
			Categories: s.categoryOptions(),
		},
	}, nil
}

func (s *Server) handleListCategories(_ context.Context, _ *struct{}) (*CategoriesOutput, error) {
	return &CategoriesOutput{Body: s.categoryOptions()}, nil
}

func (s *Server) handleListBooks(_ context.Context, input *ListBooksInput) (*GridOutput, error) {
	category := domain.Category(input.Category)
	if !s.services.Catalog.HasCategory(category) {
		return nil, toAPIError(errors.Validationf("unknown category %q", input.Category))
	}

	books := query.Query(s.services.Catalog.All(), input.Query, category)
	return &GridOutput{Body: render.Grid(books)}, nil
}

func (s *Server) handleGetBook(_ context.Context, input *GetBookInput) (*DetailOutput, error) {
	book, ok := s.services.Catalog.Get(input.ID)
	if !ok {
		return nil, toAPIError(errors.NotFoundf("book %d not found", input.ID))
	}
	return &DetailOutput{Body: render.Detail(book, s.services.Ledger.IsBorrowed(book.ID))}, nil
}

func (s *Server) handleGetHistory(_ context.Context, _ *struct{}) (*HistoryOutput, error) {
	return &HistoryOutput{Body: render.History(s.services.Ledger.History())}, nil
}

func (s *Server) categoryOptions() []CategoryOption {
	cats := s.services.Catalog.Categories()
	out := make([]CategoryOption, 0, len(cats)+1)
	out = append(out, CategoryOption{Value: string(domain.CategoryAll), Label: "All"})
	for _, c := range cats {
		out = append(out, CategoryOption{Value: string(c), Label: c.Label()})
	}
	return out
}
