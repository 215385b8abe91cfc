package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	// coll is reference to "messages" collection in MongoDB
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// Insert stores a message document and returns the saved record.
func (m *MessagesStore) Insert(ctx context.Context, text, from, to string) (*Message, error) {
	fromID, err := ParseID("from", from)
	if err != nil {
		return nil, err
	}
	toID, err := ParseID("to", to)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Text: text,
		From: fromID,
		To:   toID,
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Extract MongoDB's auto-generated _id; it becomes the Location header
	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// GetByID finds a message by hex identifier.
func (m *MessagesStore) GetByID(ctx context.Context, id string) (*Message, error) {
	oid, err := ParseID("id", id)
	if err != nil {
		return nil, err
	}

	var msg Message
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// Find returns messages matching filter, oldest first.
func (m *MessagesStore) Find(ctx context.Context, filter MessageFilter) ([]*Message, error) {
	query, err := filter.query()
	if err != nil {
		return nil, err
	}

	// Sort by _id ascending: ObjectIDs encode creation time, so this is insertion order
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := m.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// query translates the filter into a MongoDB document, parsing id fields.
func (f MessageFilter) query() (bson.M, error) {
	q := bson.M{}

	ids := []struct {
		field, key, value string
	}{
		{"id", "_id", f.ID},
		{"from", "from", f.From},
		{"to", "to", f.To},
	}
	for _, c := range ids {
		if c.value == "" {
			continue
		}
		oid, err := ParseID(c.field, c.value)
		if err != nil {
			return nil, err
		}
		q[c.key] = oid
	}

	if f.Text != "" {
		q["text"] = f.Text
	}
	return q, nil
}
