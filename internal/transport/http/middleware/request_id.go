package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"fieldops/internal/requestctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier, reusing the caller's
// X-Request-ID when present so traces can span services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), requestID)))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
