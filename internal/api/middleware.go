package api

import (
	"net/http"
	"time"

	"benefits-assistant/internal/common/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags every request with an id, echoes it back and stores a
// request-scoped logger on the context.
func requestContext(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			l := log.WithFields(map[string]interface{}{
				"requestId": reqID,
				"method":    r.Method,
				"path":      r.URL.Path,
			})
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			l.Info("request completed", map[string]interface{}{
				"status":     ww.Status(),
				"remoteIp":   r.RemoteAddr,
				"durationMs": time.Since(start).Milliseconds(),
			})
		})
	}
}
