package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/logger"
)

// UserLookup is the subset of the user store the gate reads from.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*data.User, error)
}

// Gate verifies HTTP Basic credentials against stored users. It keeps no
// session state: every request re-authenticates.
type Gate struct {
	users  UserLookup
	hasher Hasher
	logger *logger.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

// NewGate returns a Gate reading users from users and checking passwords
// with hasher.
func NewGate(users UserLookup, hasher Hasher, logger *logger.Logger) *Gate {
	return &Gate{users: users, hasher: hasher, logger: logger}
}

// Authenticate returns the user when username/password match.
// An unknown username and a wrong password both yield apperr.Rejected;
// store or hasher failures yield an internal error.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*data.User, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if errors.Is(err, data.ErrNotFound) {
		// Spend the same bcrypt time as a real compare so response timing
		// does not reveal whether the username exists.
		g.burnCompare(password)
		g.logger.Debug("Auth gate: unknown username", "username", username)
		return nil, apperr.Rejected()
	}
	if err != nil {
		return nil, apperr.Internal("AUTH_LOOKUP_FAILED", "get user by username", err)
	}

	// Users created through PUT carry no credential and can never log in.
	if user.Password == "" {
		g.burnCompare(password)
		g.logger.Debug("Auth gate: user has no credential", "username", username)
		return nil, apperr.Rejected()
	}

	ok, err := g.hasher.Compare(password, user.Password)
	if err != nil {
		return nil, apperr.Internal("AUTH_COMPARE_FAILED", "compare password", err)
	}
	if !ok {
		g.logger.Debug("Auth gate: wrong password", "username", username)
		return nil, apperr.Rejected()
	}

	return user, nil
}

func (g *Gate) burnCompare(password string) {
	hash, err := g.dummy()
	if err != nil {
		g.logger.LogError("Auth gate: timing equaliser unavailable", err)
		return
	}
	_, _ = g.hasher.Compare(password, hash)
}

// dummy returns a hash that never matches real input. It is built on first
// use; a failed attempt is retried on the next call.
func (g *Gate) dummy() (string, error) {
	g.dummyMu.Lock()
	defer g.dummyMu.Unlock()

	if g.dummyHash == "" {
		h, err := g.hasher.Hash("sup-api timing equaliser")
		if err != nil {
			return "", err
		}
		g.dummyHash = h
	}
	return g.dummyHash, nil
}
