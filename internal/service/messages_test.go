package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type exchangeFixture struct {
	ex    *Exchange
	users *testutil.MemUsers
	msgs  *testutil.MemMessages
	alice *data.User
	bob   *data.User
}

func newExchange() exchangeFixture {
	users := testutil.NewMemUsers()
	msgs := testutil.NewMemMessages()
	return exchangeFixture{
		ex:    NewExchange(msgs, users, testutil.MakeNoopLogger()),
		users: users,
		msgs:  msgs,
		alice: users.Add(data.User{Username: "alice", Password: "hash-a"}),
		bob:   users.Add(data.User{Username: "bob", Password: "hash-b"}),
	}
}

func TestParseFilter(t *testing.T) {
	f, ignored := ParseFilter(map[string]string{"from": "a", "text": "hi"})
	assert.Equal(t, data.MessageFilter{From: "a", Text: "hi"}, f)
	assert.Empty(t, ignored)

	f, ignored = ParseFilter(map[string]string{"text": "hi", "bogus": "1", "_": "123"})
	assert.Equal(t, data.MessageFilter{Text: "hi"}, f)
	assert.Equal(t, []string{"_", "bogus"}, ignored)
}

func TestExchangeCreateAndGet(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()

	id, err := fx.ex.Create(ctx, NewMessage{Text: "hi", From: fx.alice.ID.Hex(), To: fx.bob.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.msgs.Len())

	msg, err := fx.ex.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, "hi", msg.Text)
	require.NotNil(t, msg.From)
	require.NotNil(t, msg.To)
	assert.Equal(t, data.PublicUser{ID: fx.alice.ID.Hex(), Username: "alice"}, *msg.From)
	assert.Equal(t, data.PublicUser{ID: fx.bob.ID.Hex(), Username: "bob"}, *msg.To)
}

func TestExchangeCreateUnknownParty(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()
	missing := bson.NewObjectID().Hex()

	tests := []struct {
		name    string
		msg     NewMessage
		message string
	}{
		{"unknown recipient", NewMessage{Text: "hi", From: fx.alice.ID.Hex(), To: missing}, "Incorrect field value: to"},
		{"unknown sender", NewMessage{Text: "hi", From: missing, To: fx.bob.ID.Hex()}, "Incorrect field value: from"},
		{"both unknown reports sender", NewMessage{Text: "hi", From: missing, To: missing}, "Incorrect field value: from"},
		{"malformed recipient", NewMessage{Text: "hi", From: fx.alice.ID.Hex(), To: "zzz"}, "Incorrect field value: to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.ex.Create(ctx, tt.msg)
			requireStatus(t, err, http.StatusUnprocessableEntity, tt.message)
		})
	}
	assert.Equal(t, 0, fx.msgs.Len())
}

func TestExchangeGetMissing(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()

	_, err := fx.ex.Get(ctx, bson.NewObjectID().Hex())
	requireStatus(t, err, http.StatusNotFound, "Message not found")

	_, err = fx.ex.Get(ctx, "nope")
	requireStatus(t, err, http.StatusNotFound, "Message not found")
}

func TestExchangeList(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()
	a, b := fx.alice.ID.Hex(), fx.bob.ID.Hex()

	for _, m := range []NewMessage{
		{Text: "one", From: a, To: b},
		{Text: "two", From: b, To: a},
		{Text: "three", From: a, To: b},
	} {
		_, err := fx.ex.Create(ctx, m)
		require.NoError(t, err)
	}

	all, err := fx.ex.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	fromAlice, err := fx.ex.List(ctx, map[string]string{"from": a})
	require.NoError(t, err)
	require.Len(t, fromAlice, 2)
	for _, m := range fromAlice {
		require.NotNil(t, m.From)
		assert.Equal(t, "alice", m.From.Username)
	}

	byText, err := fx.ex.List(ctx, map[string]string{"text": "two", "to": a})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "two", byText[0].Text)

	none, err := fx.ex.List(ctx, map[string]string{"text": "TWO"})
	require.NoError(t, err)
	assert.Empty(t, none)

	withExtras, err := fx.ex.List(ctx, map[string]string{"from": a, "_": "1700000000"})
	require.NoError(t, err)
	assert.Len(t, withExtras, 2)
}

func TestExchangeListBadFilter(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()

	_, err := fx.ex.List(ctx, map[string]string{"from": "not-hex"})
	requireStatus(t, err, http.StatusBadRequest, "Invalid identifier: from")
}

func TestExchangeDeletedPartyPopulatesNull(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()

	id, err := fx.ex.Create(ctx, NewMessage{Text: "bye", From: fx.alice.ID.Hex(), To: fx.bob.ID.Hex()})
	require.NoError(t, err)
	require.NoError(t, fx.users.Delete(ctx, fx.bob.ID.Hex()))

	msg, err := fx.ex.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, msg.From)
	assert.Nil(t, msg.To)
}

func TestExchangeStoreFailures(t *testing.T) {
	fx := newExchange()
	ctx := context.Background()
	fx.msgs.Err = errors.New("boom")

	_, err := fx.ex.List(ctx, nil)
	requireStatus(t, err, http.StatusInternalServerError, "Internal Server Error")

	_, err = fx.ex.Create(ctx, NewMessage{Text: "hi", From: fx.alice.ID.Hex(), To: fx.bob.ID.Hex()})
	requireStatus(t, err, http.StatusInternalServerError, "Internal Server Error")

	fx.msgs.Err = nil
	fx.users.Err = errors.New("boom")
	_, err = fx.ex.Create(ctx, NewMessage{Text: "hi", From: fx.alice.ID.Hex(), To: fx.bob.ID.Hex()})
	requireStatus(t, err, http.StatusInternalServerError, "Internal Server Error")
}
