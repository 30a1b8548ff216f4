package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds MongoDB client configuration.
type MongoConfig struct {
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

// DefaultMongoConfig returns sensible default MongoDB client configuration.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		MaxPoolSize:            100,
		MinPoolSize:            10,
	}
}

// ConnectMongoDB connects to MongoDB and returns the named database.
// It verifies connectivity by pinging the server.
func ConnectMongoDB(ctx context.Context, uri, database string, config *MongoConfig) (*mongo.Database, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(config.ConnectTimeout).
		SetServerSelectionTimeout(config.ServerSelectionTimeout).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize)

	if err := clientOpts.Validate(); err != nil {
		return nil, fmt.Errorf("failed to parse MongoDB URI: %w", err)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
