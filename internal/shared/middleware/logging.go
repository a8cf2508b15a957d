package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// Status is the code written so far, 200 if the handler only wrote a body,
// 0 if it wrote nothing.
func (rw *responseWriter) Status() int {
	return rw.status
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Logging writes one logrus entry per request, tagged with the chi request
// id when RequestID runs first.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"duration": time.Since(start).String(),
		})
		if id := chimw.GetReqID(r.Context()); id != "" {
			entry = entry.WithField("request_id", id)
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	})
}
