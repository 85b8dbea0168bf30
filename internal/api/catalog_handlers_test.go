package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/render"
)

func TestGetCatalog(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/catalog")

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[CatalogResponse](t, resp)
	require.Len(t, env.Data.Books, 6)
	assert.Equal(t, "The Alchemist", env.Data.Books[0].Title)
	assert.Equal(t, CategoryOption{Value: "all", Label: "All"}, env.Data.Categories[0])
}

func TestListCategories(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/catalog/categories")

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[[]CategoryOption](t, resp)
	assert.Equal(t, []CategoryOption{
		{Value: "all", Label: "All"},
		{Value: "fiction", Label: "Fiction"},
		{Value: "history", Label: "History"},
		{Value: "fantasy", Label: "Fantasy"},
		{Value: "science", Label: "Science"},
		{Value: "biography", Label: "Biography"},
	}, env.Data)
}

func TestListBooks(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		path string
		want []int
	}{
		{"everything", "/api/v1/books", []int{1, 2, 3, 4, 5, 6}},
		{"author term", "/api/v1/books?q=frank", []int{3, 5}},
		{"case and whitespace", "/api/v1/books?q=%20%20DUNE%20", []int{3}},
		{"category", "/api/v1/books?category=biography", []int{5, 6}},
		{"term and category", "/api/v1/books?q=frank&category=biography", []int{5}},
		{"all keyword", "/api/v1/books?category=all&q=cosmos", []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			env := decode[render.GridView](t, resp)
			assert.Equal(t, tt.want, cardIDs(env.Data))
			assert.False(t, env.Data.Empty)
		})
	}
}

func TestListBooks_NoMatches(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books?q=zzzz")

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[render.GridView](t, resp)
	assert.True(t, env.Data.Empty)
	assert.Empty(t, env.Data.Cards)
	assert.Equal(t, render.EmptyGridMessage, env.Data.Placeholder)
}

func TestListBooks_UnknownCategory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books?category=poetry")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/3")

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[render.DetailView](t, resp)
	assert.Equal(t, "Dune", env.Data.Title)
	assert.Equal(t, "Fantasy", env.Data.CategoryLabel)
	assert.Equal(t, render.BorrowControl{Label: render.LabelBorrow}, env.Data.Control)
}

func TestGetBook_ReflectsLedger(t *testing.T) {
	ts := setupTestServer(t)
	book, ok := ts.services.Catalog.Get(3)
	require.True(t, ok)
	_, err := ts.ledger.Borrow(context.Background(), book)
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/books/3")

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[render.DetailView](t, resp)
	assert.Equal(t, render.BorrowControl{Label: render.LabelBorrowed, Disabled: true}, env.Data.Control)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/99")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "book 99 not found", env.Message)
}

func TestGetHistory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code)
	empty := decode[render.HistoryView](t, resp)
	assert.True(t, empty.Data.Empty)
	assert.Equal(t, render.EmptyHistoryMessage, empty.Data.Placeholder)

	for _, id := range []int{6, 1} {
		book, _ := ts.services.Catalog.Get(id)
		_, err := ts.ledger.Borrow(context.Background(), book)
		require.NoError(t, err)
	}

	resp = ts.api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[render.HistoryView](t, resp)
	require.Len(t, env.Data.Items, 2)
	assert.Equal(t, "Educated", env.Data.Items[0].Title)
	assert.Equal(t, "The Alchemist", env.Data.Items[1].Title)
	assert.Equal(t, "3/5/2024", env.Data.Items[0].BorrowedDate)
}
