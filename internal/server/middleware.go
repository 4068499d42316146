package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/ratelimit"

	"github.com/google/uuid"
)

const tooManyRequests = "Too many requests. Please try again later."

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// logRequests tags each request with an id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []logging.Field{
			logging.F("request_id", requestID),
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", rec.status),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		switch {
		case rec.status >= 500:
			s.logger.Error("HTTP request", fields...)
		case rec.status >= 400:
			s.logger.Warn("HTTP request", fields...)
		default:
			s.logger.Info("HTTP request", fields...)
		}
	})
}

// limit rejects requests once the caller exhausted its window.
func (s *Server) limit(limiter *ratelimit.FixedWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ClientID(r)
			d, err := limiter.Allow(r.Context(), id)
			if err != nil {
				s.logger.WithError(err).Error("Rate limiter unavailable",
					logging.F(logging.FieldClient, id))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Service temporarily unavailable"})
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			if !d.Allowed {
				s.logger.Warn("Rate limit exceeded",
					logging.F(logging.FieldClient, id), logging.F("path", r.URL.Path))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": tooManyRequests})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientID identifies the caller for rate limiting: the first
// X-Forwarded-For entry, else the remote host.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "anonymous"
	}
	return host
}
