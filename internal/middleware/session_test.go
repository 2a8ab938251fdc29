package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(SessionOptions{SigningKey: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)
	return s
}

func TestSessionCookieSlidesOnReturningRequest(t *testing.T) {
	sessions := newTestSessions(t)
	var seen *SessionData
	h := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
		assert.Equal(t, seen.ID, requestctx.SessionID(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	require.NotEmpty(t, seen.ID)
	require.NotEmpty(t, seen.CSRFToken)
	firstID := seen.ID

	assert.Equal(t, int((24 * time.Hour).Seconds()), cookies[0].MaxAge)
	firstCSRF := seen.CSRFToken

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, firstID, seen.ID)
	assert.Equal(t, firstCSRF, seen.CSRFToken)

	refreshed := rec.Result().Cookies()
	require.Len(t, refreshed, 1)
	assert.Equal(t, cookies[0].Name, refreshed[0].Name)
	assert.Equal(t, cookies[0].MaxAge, refreshed[0].MaxAge)
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	sessions := newTestSessions(t)
	cookie := sessions.Cookie(&SessionData{ID: "victim", CSRFToken: "t"})
	payload, sig, _ := strings.Cut(cookie.Value, ".")
	cookie.Value = payload + "x." + sig

	var seen *SessionData
	h := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "victim", seen.ID)
}

func TestCSRF(t *testing.T) {
	sessions := newTestSessions(t)
	sd := &SessionData{ID: "abc", CSRFToken: "token-1"}
	h := sessions.Middleware(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name   string
		header string
		form   string
		want   int
	}{
		{"missing", "", "", http.StatusForbidden},
		{"wrong header", "nope", "", http.StatusForbidden},
		{"header", "token-1", "", http.StatusNoContent},
		{"form field", "", "token-1", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{}
			if tc.form != "" {
				form.Set(CSRFField, tc.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/filaments/1/reviews", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.header != "" {
				req.Header.Set(CSRFHeader, tc.header)
			}
			req.AddCookie(sessions.Cookie(sd))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHTMXFlag(t *testing.T) {
	var is bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is = IsHTMX(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, is)
	assert.Equal(t, "HX-Request", rec.Header().Get("Vary"))
}
