package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production", Level: slog.LevelInfo})

	log.Info("ledger restored", "count", 2)

	assert.Contains(t, buf.String(), `"msg":"ledger restored"`)
	assert.Contains(t, buf.String(), `"count":2`)
}

func TestNew_ConsoleOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development", Level: slog.LevelInfo})

	log.Warn("ledger slot unreadable", "key", "borrowedBooks")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "ledger slot unreadable")
	assert.Contains(t, out, "key=borrowedBooks")
	assert.False(t, strings.HasPrefix(out, "{"))
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON, Environment: "development"})

	log.Info("hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelWarn})

	log.Info("dropped")
	log.Debug("dropped too")
	assert.Empty(t, buf.String())

	log.Error("kept")
	assert.Contains(t, buf.String(), "ERR")
}

func TestConsoleHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty})

	log.WithComponent("ledger").WithGroup("book").Info("borrowed", "id", 3, "title", "Dune Messiah")

	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "book.id=3")
	assert.Contains(t, out, `book.title="Dune Messiah"`)
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.WithError(errors.New("disk full")).Error("persist failed")
	assert.Contains(t, buf.String(), `"error":"disk full"`)

	require.Same(t, log, log.WithError(nil))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Info("nothing")
}
