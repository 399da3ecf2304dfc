package http

import (
	"net/http"

	"haber-radar/internal/handler/http/respond"
)

const (
	maxURILength   = 2048
	maxQueryLength = 1024
)

// InputValidation rejects oversized request lines and bodies. The API only
// serves GET requests, so bodies are capped at 1MB.
func InputValidation() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxURILength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]any{"success": false, "error": "URI too long"})
				return
			}
			if len(r.URL.RawQuery) > maxQueryLength {
				respond.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "query string too long"})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			}
			next.ServeHTTP(w, r)
		})
	}
}
