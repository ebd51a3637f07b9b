package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fundflow/pkg/requestcontext"
)

// RequestID assigns each request a correlation ID (honoring an inbound
// X-Request-ID from a sibling service) and pins the request time so every
// layer of a single request observes the same clock reading.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), id)
		ctx = requestcontext.WithTime(ctx, time.Now())

		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
