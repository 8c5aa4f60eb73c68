package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.in), tt.in)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var dev, jsonOut bytes.Buffer

	newLogger(slog.LevelInfo, "dev", &dev, &jsonOut).Info("hello", slog.Int("n", 1))
	assert.Contains(t, dev.String(), "hello")
	assert.Empty(t, jsonOut.String())

	dev.Reset()
	newLogger(slog.LevelInfo, "prod", &dev, &jsonOut).Info("hello", slog.Int("n", 1))
	assert.Empty(t, dev.String())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(1), entry["n"])
}

func TestContextRequestLoggerDefault(t *testing.T) {
	assert.Same(t, slog.Default(), ContextRequestLogger(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, ContextRequestLogger(ContextWithRequestLogger(context.Background(), l)))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := middleware.RequestID(RequestLogging(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ContextRequestLogger(r.Context()).Debug("inside handler")
		ContextWithLogAttrs(r.Context(), slog.Int("id_igreja", 11))
		w.WriteHeader(http.StatusNotFound)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ui-api/localities/0/select", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "inside handler", lines[0]["msg"])
	assert.NotEmpty(t, lines[0]["request_id"])

	final := lines[1]
	assert.Equal(t, "request completed", final["msg"])
	assert.Equal(t, "WARN", final["level"])
	assert.Equal(t, float64(404), final["status"])
	assert.Equal(t, "ui-api", final["component"])
	assert.Equal(t, float64(11), final["id_igreja"])
	assert.Equal(t, lines[0]["request_id"], final["request_id"])
}

func TestRequestLoggingSkipsHealthAndStatic(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestLogging(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, path := range []string{"/health/live", "/static/app.css"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Empty(t, buf.String())
}
