package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

func TestWriteError(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "abc123"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, NewError("invalid_review", "author is empty\nrating out of range", http.StatusUnprocessableEntity).
		WithFields("author", "rating"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "invalid_review", payload["error"])
	assert.Equal(t, "author is empty rating out of range", payload["message"])
	assert.Equal(t, []any{"author", "rating"}, payload["fields"])
	assert.Equal(t, "abc123", payload["trace_id"])
	assert.NotContains(t, payload, "request_id")
}

func TestWriteErrorOmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("catalog_unavailable", "catalog data is unavailable", http.StatusServiceUnavailable))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotContains(t, payload, "fields")
	assert.EqualValues(t, http.StatusServiceUnavailable, payload["status"])
}

func TestNewError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, NewError("x", "y", 0).Status)

	long := NewError("x", strings.Repeat("ж", 400), http.StatusBadRequest)
	assert.LessOrEqual(t, len(long.Message), 512)
	assert.True(t, strings.HasPrefix(long.Message, "жж"))
	assert.Equal(t, "invalid_json: bad body", NewError("invalid_json", "bad body", 400).Error())
}
