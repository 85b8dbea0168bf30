package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(logger.Discard().Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func TestManager_BroadcastsToClients(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	rec := domain.NewBorrowRecord(domain.Book{ID: 3, Title: "Dune"}, "1/1/2025")
	m.Emit(NewBookBorrowedEvent(rec, 1))

	for _, c := range []*Client{a, b} {
		select {
		case evt := <-c.EventChan:
			assert.Equal(t, EventBookBorrowed, evt.Type)
			assert.NotEmpty(t, evt.ID)
			data, ok := evt.Data.(BookBorrowedEventData)
			require.True(t, ok)
			assert.Equal(t, 3, data.Record.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}

	m.Disconnect(a.ID)
	assert.Equal(t, 1, m.ClientCount())
	m.Disconnect(a.ID)
}

func TestManager_IgnoresForeignEventTypes(t *testing.T) {
	m := startManager(t)
	c, err := m.Connect()
	require.NoError(t, err)

	m.Emit("not an event")

	select {
	case evt := <-c.EventChan:
		t.Fatalf("unexpected event %v", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := NewManager(logger.Discard().Logger)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))

	assert.NotPanics(t, func() { m.Emit(NewHeartbeatEvent()) })
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	srv := httptest.NewServer(NewHandler(m, logger.Discard().Logger))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	m.Emit(NewBookBorrowedEvent(domain.NewBorrowRecord(domain.Book{ID: 1, Title: "The Alchemist"}, "1/1/2025"), 1))

	var frame []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ledger.borrowed") {
			frame = append(frame, line)
			data, err := reader.ReadString('\n')
			require.NoError(t, err)
			frame = append(frame, data)
			break
		}
		if strings.HasPrefix(line, "id: ") {
			frame = []string{line}
		}
	}

	require.Len(t, frame, 3)
	assert.True(t, strings.HasPrefix(frame[0], "id: "))
	assert.Contains(t, frame[2], `"title":"The Alchemist"`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(logger.Discard().Logger), logger.Discard().Logger)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
