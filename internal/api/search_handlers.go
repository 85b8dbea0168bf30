package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Relevance-ranked full-text search over titles, authors and descriptions",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Search query; empty matches everything"`
	Category string `query:"category" maxLength:"64" doc:"Restrict to one category"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if !s.services.Catalog.HasCategory(domain.Category(input.Category)) {
		return nil, toAPIError(errors.Validationf("unknown category %q", input.Category))
	}

	result, err := s.services.Search.Search(ctx, search.Params{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		s.logger.Error("Search failed", "query", input.Query, "error", err)
		return nil, toAPIError(err)
	}

	return &SearchOutput{Body: *result}, nil
}
