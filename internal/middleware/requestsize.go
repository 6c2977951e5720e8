package middleware

import (
	"net/http"
	"strings"
)

const (
	// DefaultMaxRequestSize is the default maximum request body size (1MB)
	DefaultMaxRequestSize int64 = 1 << 20 // 1MB
	// DefaultMaxImportSize bounds task import payloads (16MB)
	DefaultMaxImportSize int64 = 16 << 20
)

// MaxRequestSize limits the size of request bodies to prevent DoS attacks.
// overrides maps a path suffix (e.g. "/tasks/import") to its own limit.
func MaxRequestSize(maxBytes int64, overrides map[string]int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxBytes
			for suffix, n := range overrides {
				if n > 0 && strings.HasSuffix(r.URL.Path, suffix) {
					limit = n
					break
				}
			}

			// Check Content-Length header early if present
			if r.ContentLength > limit {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
