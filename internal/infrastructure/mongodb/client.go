// Package mongodb stores the library documents (books and publishers) in MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"github.com/webstack/backend/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names. Book documents reference publishers by DBRef to PublishersCollection.
const (
	BooksCollection      = "book"
	PublishersCollection = "publisher"
)

// Client wraps the driver client and the application database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect dials MongoDB and verifies the primary is reachable
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return &Client{client: client, db: client.Database(cfg.Database), logger: logger}, nil
}

// Database returns the application database
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping checks that the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	c.logger.Info("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the secondary indexes the repositories query by
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(BooksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("book_title"),
	}); err != nil {
		return fmt.Errorf("failed to create books index: %w", err)
	}
	if _, err := db.Collection(PublishersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("publisher_name"),
	}); err != nil {
		return fmt.Errorf("failed to create publishers index: %w", err)
	}
	return nil
}
