package service

import (
	"context"
	"errors"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/auth"
	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/logger"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	msgUserNotFound = "User not found"
	msgUserExists   = "User already exists"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	List(ctx context.Context) ([]*data.User, error)
	Create(ctx context.Context, username, hashedPassword string) (*data.User, error)
	GetByID(ctx context.Context, id string) (*data.User, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]*data.User, error)
	GetByUsername(ctx context.Context, username string) (*data.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Upsert(ctx context.Context, id, username string) (created bool, err error)
	Delete(ctx context.Context, id string) error
}

// Directory manages user records.
type Directory struct {
	users  UserStore
	hasher auth.Hasher
	logger *logger.Logger
}

// NewDirectory creates a Directory over users, hashing new passwords with hasher.
func NewDirectory(users UserStore, hasher auth.Hasher, logger *logger.Logger) *Directory {
	return &Directory{users: users, hasher: hasher, logger: logger}
}

// List returns every user without credential material.
func (d *Directory) List(ctx context.Context) ([]data.PublicUser, error) {
	users, err := d.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("USER_LIST_FAILED", "list users", err)
	}

	return lo.Map(users, func(u *data.User, _ int) data.PublicUser { return u.Public() }), nil
}

// Create registers a new user with a hashed password.
//
// The username check and the insert are separate store calls, so two
// concurrent signups with the same username can both succeed.
func (d *Directory) Create(ctx context.Context, username, password string) (data.PublicUser, error) {
	d.logger.Debug("Directory service: creating user", "username", username)

	exists, err := d.users.UsernameExists(ctx, username)
	if err != nil {
		return data.PublicUser{}, apperr.Internal("USER_CREATE_FAILED", "check username", err)
	}
	if exists {
		d.logger.Info("Directory service: username already taken", "username", username)
		return data.PublicUser{}, apperr.Conflict(msgUserExists)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return data.PublicUser{}, apperr.Internal("USER_CREATE_FAILED", "hash password", err)
	}

	user, err := d.users.Create(ctx, username, hash)
	if err != nil {
		return data.PublicUser{}, apperr.Internal("USER_CREATE_FAILED", "insert user", err)
	}

	d.logger.Info("Directory service: user created",
		"username", username,
		"user_id", user.ID.Hex())

	return user.Public(), nil
}

// Get returns the user with the given id.
func (d *Directory) Get(ctx context.Context, id string) (data.PublicUser, error) {
	user, err := d.users.GetByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) || errors.Is(err, data.ErrInvalidID) {
		return data.PublicUser{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return data.PublicUser{}, apperr.Internal("USER_GET_FAILED", "get user by id", err)
	}
	return user.Public(), nil
}

// Upsert sets the username of user id, creating a credential-less user with
// exactly that id when none exists. Both branches succeed the same way.
func (d *Directory) Upsert(ctx context.Context, id, username string) error {
	created, err := d.users.Upsert(ctx, id, username)
	if errors.Is(err, data.ErrInvalidID) {
		return apperr.InvalidReference("Invalid identifier: id")
	}
	if err != nil {
		return apperr.Internal("USER_UPSERT_FAILED", "upsert user", err)
	}

	if created {
		// No password is set on this path; such users cannot authenticate.
		d.logger.Warn("Directory service: user created without credential",
			"user_id", id,
			"username", username)
	} else {
		d.logger.Info("Directory service: username replaced",
			"user_id", id,
			"username", username)
	}
	return nil
}

// Delete removes user id. Messages referencing it are left untouched.
func (d *Directory) Delete(ctx context.Context, id string) error {
	err := d.users.Delete(ctx, id)
	if errors.Is(err, data.ErrNotFound) || errors.Is(err, data.ErrInvalidID) {
		return apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return apperr.Internal("USER_DELETE_FAILED", "delete user", err)
	}

	d.logger.Info("Directory service: user deleted", "user_id", id)
	return nil
}
