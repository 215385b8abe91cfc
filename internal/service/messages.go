// Package service holds the user directory and message exchange operations.
// Each operation is one store pipeline that stops at the first failure and
// returns an *apperr.Error.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/PaulBabatuyi/sup-api/internal/apperr"
	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/logger"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const msgMessageNotFound = "Message not found"

// MessageStore defines persistence operations for messages.
type MessageStore interface {
	Insert(ctx context.Context, text, from, to string) (*data.Message, error)
	GetByID(ctx context.Context, id string) (*data.Message, error)
	Find(ctx context.Context, filter data.MessageFilter) ([]*data.Message, error)
}

// NewMessage is a validated message payload.
type NewMessage struct {
	Text string
	From string
	To   string
}

// Exchange manages message records and resolves their parties.
type Exchange struct {
	msgs   MessageStore
	users  UserStore
	logger *logger.Logger
}

// NewExchange creates an Exchange.
func NewExchange(msgs MessageStore, users UserStore, logger *logger.Logger) *Exchange {
	return &Exchange{msgs: msgs, users: users, logger: logger}
}

// filterFields maps accepted query keys to filter setters.
var filterFields = map[string]func(*data.MessageFilter, string){
	"id":   func(f *data.MessageFilter, v string) { f.ID = v },
	"from": func(f *data.MessageFilter, v string) { f.From = v },
	"to":   func(f *data.MessageFilter, v string) { f.To = v },
	"text": func(f *data.MessageFilter, v string) { f.Text = v },
}

// ParseFilter builds an exact-match filter from raw query values. Keys that
// name no message field are returned in ignored, sorted, and do not narrow
// the result, so client extras such as a cache-buster are harmless.
func ParseFilter(raw map[string]string) (f data.MessageFilter, ignored []string) {
	keys := lo.Keys(raw)
	sort.Strings(keys)
	for _, k := range keys {
		set, ok := filterFields[k]
		if !ok {
			ignored = append(ignored, k)
			continue
		}
		set(&f, raw[k])
	}
	return f, ignored
}

// List returns the messages matching raw, with parties populated.
func (e *Exchange) List(ctx context.Context, raw map[string]string) ([]data.PopulatedMessage, error) {
	filter, ignored := ParseFilter(raw)
	if len(ignored) > 0 {
		e.logger.Debug("Exchange service: ignoring unknown filter fields", "fields", ignored)
	}

	msgs, err := e.msgs.Find(ctx, filter)
	var idErr *data.InvalidIDError
	if errors.As(err, &idErr) {
		return nil, apperr.InvalidReference("Invalid identifier: " + idErr.Field)
	}
	if err != nil {
		return nil, apperr.Internal("MESSAGE_LIST_FAILED", "find messages", err)
	}

	return e.populate(ctx, msgs)
}

// Create stores a message after checking that both parties exist, from
// first. It returns the new message id.
//
// The checks and the insert are not atomic: a user deleted in between
// leaves a message with a dangling reference.
func (e *Exchange) Create(ctx context.Context, m NewMessage) (string, error) {
	steps := []struct {
		field string
		id    string
	}{
		{"from", m.From},
		{"to", m.To},
	}
	for _, s := range steps {
		if err := e.requireUser(ctx, s.field, s.id); err != nil {
			return "", err
		}
	}

	msg, err := e.msgs.Insert(ctx, m.Text, m.From, m.To)
	if err != nil {
		return "", apperr.Internal("MESSAGE_CREATE_FAILED", "insert message", err)
	}

	e.logger.Info("Exchange service: message stored",
		"message_id", msg.ID.Hex(),
		"from", m.From,
		"to", m.To)

	return msg.ID.Hex(), nil
}

// Get returns one message with parties populated.
func (e *Exchange) Get(ctx context.Context, id string) (data.PopulatedMessage, error) {
	msg, err := e.msgs.GetByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) || errors.Is(err, data.ErrInvalidID) {
		return data.PopulatedMessage{}, apperr.NotFound(msgMessageNotFound)
	}
	if err != nil {
		return data.PopulatedMessage{}, apperr.Internal("MESSAGE_GET_FAILED", "get message by id", err)
	}

	out, err := e.populate(ctx, []*data.Message{msg})
	if err != nil {
		return data.PopulatedMessage{}, err
	}
	return out[0], nil
}

func (e *Exchange) requireUser(ctx context.Context, field, id string) error {
	_, err := e.users.GetByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) || errors.Is(err, data.ErrInvalidID) {
		e.logger.Debug("Exchange service: unknown party", "field", field, "id", id)
		return apperr.UnknownParty(field)
	}
	if err != nil {
		return apperr.Internal("MESSAGE_CREATE_FAILED", fmt.Sprintf("resolve %s", field), err)
	}
	return nil
}

// populate swaps from/to ids for the referenced users with one store call.
// Users that no longer exist come back as nil.
func (e *Exchange) populate(ctx context.Context, msgs []*data.Message) ([]data.PopulatedMessage, error) {
	ids := lo.Uniq(lo.FlatMap(msgs, func(m *data.Message, _ int) []bson.ObjectID {
		return []bson.ObjectID{m.From, m.To}
	}))

	users, err := e.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("MESSAGE_POPULATE_FAILED", "get users by ids", err)
	}

	byID := lo.SliceToMap(users, func(u *data.User) (bson.ObjectID, data.PublicUser) {
		return u.ID, u.Public()
	})
	party := func(id bson.ObjectID) *data.PublicUser {
		if u, ok := byID[id]; ok {
			return &u
		}
		return nil
	}

	return lo.Map(msgs, func(m *data.Message, _ int) data.PopulatedMessage {
		return data.PopulatedMessage{
			ID:   m.ID.Hex(),
			Text: m.Text,
			From: party(m.From),
			To:   party(m.To),
		}
	}), nil
}
