package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"nfl-pickem-go/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogging logs every request with a generated request ID
func RequestLogging(next http.Handler) http.Handler {
	logger := logging.WithPrefix("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Infof("[%s] %s %s %d %v", requestID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
