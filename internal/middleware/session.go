package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
)

// SessionData is the payload of the signed session cookie. Browsing state
// itself lives server side and is looked up by ID.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionOptions configure the session cookie.
type SessionOptions struct {
	CookieName string
	// SigningKey authenticates cookies. When empty a random process-local key is generated.
	SigningKey []byte
	Secure     bool
	MaxAge     time.Duration
	Logger     *zap.Logger
}

// Sessions issues and verifies HMAC-signed session cookies.
type Sessions struct {
	name   string
	key    []byte
	secure bool
	maxAge time.Duration
}

// NewSessions builds the session cookie codec.
func NewSessions(opts SessionOptions) (*Sessions, error) {
	key := opts.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.New("session: failed to generate signing key")
		}
		if opts.Logger != nil {
			opts.Logger.Warn("session: using ephemeral signing key, set SPOOLSHELF_SESSION_SIGNING_KEY to keep sessions across restarts")
		}
	}
	name := strings.TrimSpace(opts.CookieName)
	if name == "" {
		name = "spoolshelf_session"
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Sessions{name: name, key: key, secure: opts.Secure, maxAge: maxAge}, nil
}

// Middleware loads or initializes a session and stores it in request context.
// The cookie is re-issued on every response so that its lifetime slides with
// the visitor's activity, matching the idle expiry of the session store.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, ok := s.read(r)
		if !ok {
			sd = &SessionData{
				ID:        randID(),
				CSRFToken: newCSRFToken(),
				CreatedAt: time.Now().UTC(),
			}
		}
		s.write(w, sd)
		ctx := WithSession(r.Context(), sd)
		ctx = requestctx.WithSessionID(ctx, sd.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return nil, false
	}
	payloadPart, sigPart, found := strings.Cut(c.Value, ".")
	if !found {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return nil, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil || sd.ID == "" {
		return nil, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	http.SetCookie(w, s.Cookie(sd))
}

// Cookie returns the signed cookie carrying sd.
func (s *Sessions) Cookie(sd *SessionData) *http.Cookie {
	payload, _ := json.Marshal(sd)
	value := base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(s.sign(payload))
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.maxAge / time.Second),
	}
}

func (s *Sessions) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
