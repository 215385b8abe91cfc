// Package db manages MongoDB connections and collections.
package db

import (
	"context" // For connection timeout/cancellation
	"fmt"     // Error formatting
	"time"    // Duration for timeouts

	"go.mongodb.org/mongo-driver/v2/bson"           // Index key documents
	"go.mongodb.org/mongo-driver/v2/mongo"          // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options"  // MongoDB options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref" // MongoDB read preference
)

// DefaultDatabase is the database used when none is configured.
const DefaultDatabase = "sup"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is reference to the application database within MongoDB
	// Collections ("users", "messages") are accessed via this db reference
	db *mongo.Database
}

// New connects to MongoDB and returns a Client bound to database.
// An empty database name selects DefaultDatabase.
func New(ctx context.Context, mongoURI, database string, connectTimeout time.Duration) (*Client, error) {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	if database == "" {
		database = DefaultDatabase
	}

	// Create MongoDB client options from connection URI
	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(connectTimeout)

	// This doesn't actually connect yet, just creates the client
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping with its own deadline derived from the caller's context
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,                    // Keep reference to close connection later
		db:     client.Database(database), // Use this to access collections
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// Ping checks that the primary is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	// ctx can have timeout if you want to force shutdown after N seconds
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates necessary indexes for users and messages collections.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== USERS COLLECTION INDEX =====
	// Plain (non-unique) index on username: speeds up the signup pre-check and
	// basic-auth lookups. Uniqueness is checked by the directory service before
	// insert, not enforced here.
	usersIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	}

	_, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndexModel)
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// ===== MESSAGES COLLECTION INDEXES =====
	// Exact-match filters on GET /messages hit these
	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "to", Value: 1}}},
		{Keys: bson.D{{Key: "from", Value: 1}}},
	}

	_, err = c.MessagesCollection().Indexes().CreateMany(ctx, messageIndexes)
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
