package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/browse"
	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
	"github.com/bookshelfapp/bookshelf-server/internal/render"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api    humatest.TestAPI
	kv     store.KV
	ledger *ledger.Ledger
}

type serverOption func(*Options, *store.KV)

func withBorrowLimiter(l *ratelimit.KeyedRateLimiter) serverOption {
	return func(o *Options, _ *store.KV) { o.BorrowLimiter = l }
}

func withTrustedProxy() serverOption {
	return func(o *Options, _ *store.KV) { o.TrustProxyHeaders = true }
}

func withKV(kv store.KV) serverOption {
	return func(_ *Options, target *store.KV) { *target = kv }
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	cat, err := catalog.Load("")
	require.NoError(t, err)

	var serverOpts Options
	var kv store.KV = store.NewMemory()
	for _, opt := range opts {
		opt(&serverOpts, &kv)
	}

	events := sse.NewManager(logger)
	led := ledger.Open(context.Background(), kv, ledger.Options{
		Clock:   func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC) },
		Emitter: events,
		Logger:  logger,
	})

	idx, err := search.Open(search.Options{Logger: logger})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBooks(cat.All()))
	t.Cleanup(func() { _ = idx.Close() })

	services := &Services{
		Catalog:  cat,
		Ledger:   led,
		Sessions: browse.NewRegistry(cat, led, time.Hour, logger),
		Search:   idx,
		Events:   events,
	}

	s := NewServer(services, serverOpts, logger)
	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		kv:     kv,
		ledger: led,
	}
}

// envelope mirrors the wire shape so tests decode data into concrete types.
type envelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/sessions")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	page := decode[browse.Page](t, resp)
	require.NotEmpty(t, page.Data.SessionID)
	return page.Data.SessionID
}

func cardIDs(g render.GridView) []int {
	ids := make([]int, len(g.Cards))
	for i, c := range g.Cards {
		ids[i] = c.ID
	}
	return ids
}

// failingKV reads as empty and refuses every write.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, store.ErrNotFound }
func (failingKV) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (failingKV) Close() error { return nil }

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_RequestValidationIsEnveloped(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/zero")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.NotEmpty(t, env.Details)
}
