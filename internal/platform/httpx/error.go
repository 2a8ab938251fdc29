package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

// Error is the JSON error body of the /api routes.
type Error struct {
	Code    string
	Message string
	Status  int
	// Fields names the request fields that failed validation.
	Fields []string
}

type envelope struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Status    int      `json:"status"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	TraceID   string   `json:"trace_id,omitempty"`
}

// NewError builds an Error; a zero status becomes 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clip(code, 80),
		Message: clip(message, 512),
		Status:  status,
	}
}

// WithFields returns a copy of e listing the invalid fields.
func (e Error) WithFields(fields ...string) Error {
	e.Fields = slices.Clone(fields)
	return e
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WriteError writes e, stamped with the request and trace ids found in ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, e Error) {
	if e.Status == 0 {
		e.Status = http.StatusInternalServerError
	}
	body := envelope{
		Error:     e.Code,
		Message:   e.Message,
		Status:    e.Status,
		Fields:    e.Fields,
		RequestID: clip(middleware.GetReqID(ctx), 80),
		TraceID:   clip(requestctx.TraceID(ctx), 64),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// clip flattens control characters to spaces and caps the byte length.
func clip(value string, limit int) string {
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = strings.ToValidUTF8(value[:limit], "")
	}
	return value
}
