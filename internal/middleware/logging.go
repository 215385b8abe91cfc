// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"net/http"
	"time"

	"github.com/PaulBabatuyi/sup-api/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// unmatchedRoute labels requests no route accepted (404s and 405s).
const unmatchedRoute = "unmatched"

// statusRecorder captures the status code written by a handler and the
// route template reported by TagRoute.
type statusRecorder struct {
	http.ResponseWriter
	status int
	route  string
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK, route: unmatchedRoute}
}

// TagRoute reports the matched route template to the Logging and Metrics
// middlewares wrapped around the router. Register it with mux.Router.Use;
// mux only runs it for matched routes.
func TagRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := w.(*statusRecorder); ok {
			rec.route = routeName(r)
		}
		next.ServeHTTP(w, r)
	})
}

// routeName returns the matched route template.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return unmatchedRoute
}

// Logging logs HTTP requests and their results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, route, status and duration for each request. Wrap the
// whole router so unmatched requests are logged too. A request id is taken
// from the client or generated, and echoed back.
func (l *Logging) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		rec.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(rec, r)

		level := l.logger.Info
		if rec.status >= http.StatusInternalServerError {
			level = l.logger.Warn
		}
		level("HTTP request completed",
			"request_id", reqID,
			"method", r.Method,
			"route", rec.route,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
