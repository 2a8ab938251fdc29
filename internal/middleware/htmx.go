package middleware

import "net/http"

// HTMX marks requests coming from htmx so handlers can answer with fragments.
// Responses vary on HX-Request so caches keep pages and fragments apart.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), is)))
	})
}
