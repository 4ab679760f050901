package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentRecords)

	logger.Info("hello", FieldRecordID, "abc")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "component=records"))
	assert.Contains(t, out, "record_id=abc")
	assert.Equal(t, ComponentRecords, logger.Component())
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithRecord("budget", "id-1", "Food", 50000).
		WithPeriod(3, 2024).
		WithOperation(OpCreate).
		WithError(errors.New("boom"))

	assert.Equal(t, "budget", fields[FieldRecordKind])
	assert.Equal(t, "id-1", fields[FieldRecordID])
	assert.Equal(t, "Food", fields[FieldCategory])
	assert.Equal(t, int64(50000), fields[FieldAmountCents])
	assert.Equal(t, 3, fields[FieldMonth])
	assert.Equal(t, 2024, fields[FieldYear])
	assert.Equal(t, OpCreate, fields[FieldOperation])
	assert.Equal(t, "boom", fields[FieldError])
	assert.Len(t, fields.ToSlice(), len(fields)*2)

	assert.NotContains(t, NewFields().WithError(nil), FieldError)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf, ComponentHTTP).With(FieldRequestID, "req_42")

	ctx := WithLogger(context.Background(), base)
	FromContext(ctx).InfoContext(ctx, "inside")

	assert.Same(t, base, FromContext(ctx))
	assert.Contains(t, buf.String(), "request_id=req_42")
	assert.Contains(t, buf.String(), "component=http")
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/x", nil)

	sl.LogHTTPEnd(context.Background(), req, http.StatusNotFound, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status_code=404")

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), req, http.StatusInternalServerError, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	sl.LogRecordChanged(context.Background(), OpDelete, "transaction", "x", "Food", 1250)
	assert.Contains(t, buf.String(), "operation=delete")
	assert.Contains(t, buf.String(), "amount_cents=1250")

	buf.Reset()
	sl.LogError(context.Background(), "store failed", errors.New("disk full"), OpList, nil)
	assert.Contains(t, buf.String(), `error="disk full"`)
}
