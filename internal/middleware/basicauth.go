package middleware

import (
	"context"
	"net/http"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/logger"
	"github.com/PaulBabatuyi/sup-api/internal/respond"
)

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*data.User, error)
}

type userContextKey struct{}

// UserFromContext returns the user attached by BasicAuth, if any.
func UserFromContext(ctx context.Context) (*data.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*data.User)
	return u, ok
}

// BasicAuth guards handlers with HTTP Basic credentials.
type BasicAuth struct {
	auth   Authenticator
	realm  string
	logger *logger.Logger
}

// NewBasicAuth creates a BasicAuth middleware answering challenges for realm.
func NewBasicAuth(auth Authenticator, realm string, logger *logger.Logger) *BasicAuth {
	return &BasicAuth{auth: auth, realm: realm, logger: logger}
}

// Handle authenticates every request before calling next.
func (m *BasicAuth) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			m.challenge(w, r, apperr.Rejected())
			return
		}

		user, err := m.auth.Authenticate(r.Context(), username, password)
		if err != nil {
			m.challenge(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *BasicAuth) challenge(w http.ResponseWriter, r *http.Request, err error) {
	if !apperr.IsInternal(err) {
		w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`"`)
		m.logger.Debug("authentication rejected", "path", r.URL.Path)
	}
	respond.Error(w, r, m.logger, err)
}
