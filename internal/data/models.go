package data

import (
	"errors"
	"fmt"

	"github.com/PaulBabatuyi/sup-api/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is matched by every InvalidIDError.
	ErrInvalidID = errors.New("malformed identifier")
)

// InvalidIDError reports an identifier that is not a valid ObjectID hex string.
type InvalidIDError struct {
	Field string
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("malformed %s identifier %q", e.Field, e.Value)
}

// Is lets errors.Is(err, ErrInvalidID) match.
func (e *InvalidIDError) Is(target error) bool { return target == ErrInvalidID }

// ParseID converts a client-supplied identifier into an ObjectID.
// field names the payload or query field the value came from.
func ParseID(field, value string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(normalize.ID(value))
	if err != nil {
		return bson.NilObjectID, &InvalidIDError{Field: field, Value: value}
	}
	return id, nil
}

// User maps to users collection (id, username, password hash)
type User struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Username string        `bson:"username"`
	// Password holds the bcrypt hash; empty for users created through PUT
	Password string `bson:"password,omitempty"`
}

// PublicUser is the outward shape of a User: never carries the hash.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public strips credential material from u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID.Hex(), Username: u.Username}
}

// Message maps to messages collection (sender, recipient, text)
type Message struct {
	ID   bson.ObjectID `bson:"_id,omitempty"`
	Text string        `bson:"text"`
	From bson.ObjectID `bson:"from"`
	To   bson.ObjectID `bson:"to"`
}

// PopulatedMessage is a Message with from/to replaced by the referenced
// users. A nil party means the user no longer exists.
type PopulatedMessage struct {
	ID   string      `json:"id"`
	Text string      `json:"text"`
	From *PublicUser `json:"from"`
	To   *PublicUser `json:"to"`
}

// MessageFilter is an exact-match predicate over stored message fields.
// Empty fields are unconstrained.
type MessageFilter struct {
	ID   string
	From string
	To   string
	Text string
}
