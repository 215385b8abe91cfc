// Package data provides DB models and stores.
package data

import (
	"context" // Used for cancellation and timeouts
	"errors"  // Error handling

	"go.mongodb.org/mongo-driver/v2/bson"          // MongoDB document queries
	"go.mongodb.org/mongo-driver/v2/mongo"         // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options" // Find/Update options
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is reference to "users" collection in MongoDB
	// Set via NewUsersStore() and used in all methods below
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// List returns every user in insertion order.
func (u *UsersStore) List(ctx context.Context) ([]*User, error) {
	// ObjectIDs grow monotonically, so sorting by _id keeps insertion order
	cursor, err := u.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user document with hashed password.
func (u *UsersStore) Create(ctx context.Context, username, hashedPassword string) (*User, error) {
	user := &User{
		Username: username,
		Password: hashedPassword, // Already hashed by the credential hasher
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	// MongoDB auto-generates the _id field; extract it and set on User struct
	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetByUsername finds the first user with the given username.
func (u *UsersStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User

	err := u.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID finds a user by hex identifier.
func (u *UsersStore) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := ParseID("id", id)
	if err != nil {
		return nil, err
	}

	var user User
	err = u.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs returns the users whose _id is in ids. Missing ids are skipped.
func (u *UsersStore) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]*User, error) {
	users := []*User{}
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UsernameExists checks if a user exists by username.
func (u *UsersStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	// Much faster than FindOne when you only need to know if it exists
	count, err := u.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert sets the username of the user with the given id, creating the
// document (without a password) when it does not exist. created reports
// which branch ran.
func (u *UsersStore) Upsert(ctx context.Context, id, username string) (created bool, err error) {
	oid, err := ParseID("id", id)
	if err != nil {
		return false, err
	}

	result, err := u.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"username": username}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// Delete removes the user with the given id.
func (u *UsersStore) Delete(ctx context.Context, id string) error {
	oid, err := ParseID("id", id)
	if err != nil {
		return err
	}

	result, err := u.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
