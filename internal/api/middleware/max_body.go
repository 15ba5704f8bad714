package middleware

import (
	"net/http"

	"github.com/contractiq/contractiq/internal/api"
)

// MaxBodyBytes caps request body size, which for this service means the
// size of an uploaded contract file. Oversized requests with a declared
// Content-Length are rejected up front with 413; chunked requests are
// capped by MaxBytesReader while the body is read. limit <= 0 disables
// the cap.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit && r.ContentLength != -1 {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
