package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestAction_Complete(t *testing.T) {
	a := NewAction("event_created").ForUser("alice")
	require.False(t, a.StartTime.IsZero())

	a.Complete(nil)
	assert.True(t, a.Success)
	assert.Equal(t, StatusSuccess, a.Status())
	assert.Empty(t, a.Error)
	assert.GreaterOrEqual(t, a.Duration.Nanoseconds(), int64(0))

	b := NewAction("event_created").Complete(errors.New("permission denied"))
	assert.False(t, b.Success)
	assert.Equal(t, StatusError, b.Status())
	assert.Equal(t, "permission denied", b.Error)
}

func TestAction_LogAttrs(t *testing.T) {
	a := NewAction("event_created").
		ForUser("alice").
		Via("http").
		WithService(ServiceCalendar, OperationInsert).
		WithEventID("ev1").
		WithAttendees([]string{"bob@example.com", "carol@corp.io"}).
		Complete(nil)

	t.Run("anonymized", func(t *testing.T) {
		m := map[string]any{}
		for _, attr := range a.LogAttrs(false) {
			m[attr.Key] = attr.Value.Any()
		}
		assert.Equal(t, "event_created", m["action"])
		assert.Equal(t, "alice", m["user"])
		assert.Equal(t, "http", m["surface"])
		assert.Equal(t, "ev1", m["event_id"])
		assert.Equal(t, int64(2), m["attendee_count"])
		assert.Equal(t, "example.com,corp.io", m["attendee_domains"])
		assert.NotContains(t, m, "attendees")
	})

	t.Run("with pii", func(t *testing.T) {
		m := map[string]any{}
		for _, attr := range a.LogAttrs(true) {
			m[attr.Key] = attr.Value.Any()
		}
		assert.Equal(t, "bob@example.com,carol@corp.io", m["attendees"])
		assert.NotContains(t, m, "attendee_domains")
	})

	t.Run("minimal", func(t *testing.T) {
		attrs := NewAction("grant_saved").ForUser("me").Complete(nil).LogAttrs(false)
		assert.Len(t, attrs, 4)
	})
}

func TestAction_WithSpanContext_NoSpan(t *testing.T) {
	a := NewAction("x").WithSpanContext(context.Background())
	assert.Empty(t, a.TraceID)
	assert.Empty(t, a.SpanID)
}

func TestAuditLogger_Log(t *testing.T) {
	t.Run("success at info", func(t *testing.T) {
		var buf bytes.Buffer
		al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

		al.Log(NewAction("grant_saved").ForUser("alice").Complete(nil))

		entry := decodeLine(t, &buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "action_completed", entry["msg"])
		assert.Equal(t, "audit", entry["log_type"])
		assert.Equal(t, "alice", entry["user"])
	})

	t.Run("failure at warn", func(t *testing.T) {
		var buf bytes.Buffer
		al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

		al.Log(NewAction("event_created").ForUser("bob").Complete(errors.New("quota")))

		entry := decodeLine(t, &buf)
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "action_failed", entry["msg"])
		assert.Equal(t, "quota", entry["error"])
	})

	t.Run("disabled", func(t *testing.T) {
		var buf bytes.Buffer
		al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

		al.Log(NewAction("grant_saved").Complete(nil))
		assert.Zero(t, buf.Len())
	})

	t.Run("nil logger", func(t *testing.T) {
		var al *AuditLogger
		assert.NotPanics(t, func() { al.Log(NewAction("x").Complete(nil)) })
	})
}
