package middleware

import (
	"net/http"
	"strings"

	"github.com/nazbav/spoolshelf/internal/platform/httpx"
)

func writeError(w http.ResponseWriter, r *http.Request, code int, errCode, msg string) {
	if IsHTMX(r.Context()) || strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.WriteError(r.Context(), w, httpx.NewError(errCode, msg, code))
		return
	}
	http.Error(w, msg, code)
}
