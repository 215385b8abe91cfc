package main

import (
	"context"
	"net/http"
	"time"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/logger"
	"github.com/PaulBabatuyi/sup-api/internal/middleware"
	"github.com/PaulBabatuyi/sup-api/internal/respond"
	"github.com/PaulBabatuyi/sup-api/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the services behind the HTTP routes.
type Server struct {
	users  *service.Directory
	msgs   *service.Exchange
	auth   *middleware.BasicAuth
	store  Pinger
	prefix string
	logger *logger.Logger
}

// newServer returns a ready-to-use Server. prefix is prepended to every API
// route and Location header.
func newServer(users *service.Directory, msgs *service.Exchange, auth *middleware.BasicAuth, store Pinger, prefix string, logger *logger.Logger) *Server {
	return &Server{users: users, msgs: msgs, auth: auth, store: store, prefix: prefix, logger: logger}
}

// routes builds the router. A nil registry disables /metrics. Logging and
// metrics wrap the whole router so unmatched requests are recorded too.
func (s *Server) routes(reg *prometheus.Registry) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, s.logger, apperr.NotFound(http.StatusText(http.StatusNotFound)))
	})
	r.Use(middleware.TagRoute)

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := r
	if s.prefix != "" {
		api = r.PathPrefix(s.prefix).Subrouter()
	}

	api.Handle("/users", s.protect(s.listUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	api.Handle("/users/{id}", s.protect(s.getUser)).Methods(http.MethodGet)
	api.Handle("/users/{id}", s.protect(s.putUser)).Methods(http.MethodPut)
	api.Handle("/users/{id}", s.protect(s.deleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.createMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}", s.getMessage).Methods(http.MethodGet)

	var h http.Handler = r
	if reg != nil {
		h = middleware.NewMetrics(reg).Handle(h)
	}
	return middleware.NewLogging(s.logger).Handle(h)
}

func (s *Server) protect(h http.HandlerFunc) http.Handler {
	return s.auth.Handle(h)
}

// location returns the absolute path of a created resource.
func (s *Server) location(collection, id string) string {
	return s.prefix + "/" + collection + "/" + id
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err.Error())
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
