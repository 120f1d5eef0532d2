package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Info("event created", User("alice"), Status(StatusSuccess))

	out := buf.String()
	assert.Contains(t, out, `"user":"alice"`)
	assert.Contains(t, out, `"status":"success"`)
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "text")

	WithUser(WithOperation(WithTool(logger, "calendar_quick_add"), "event.dispatch"), "bob").Debug("x")

	out := buf.String()
	assert.Contains(t, out, "tool=calendar_quick_add")
	assert.Contains(t, out, "operation=event.dispatch")
	assert.Contains(t, out, "user=bob")
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")
	logger.Info("ok", Err(nil))
	assert.NotContains(t, buf.String(), "error=")
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	got := SanitizeToken("ya29.secret-access-token")
	require.NotContains(t, got, "secret")
	assert.Equal(t, "[token:24 chars]", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "오늘...", Truncate("오늘 회의", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.True(t, strings.HasSuffix(Truncate(strings.Repeat("x", 300), 200), "..."))
}
