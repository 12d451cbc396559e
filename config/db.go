package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB opens a MongoDB connection and returns the configured database.
func ConnectDB(cfg *Config) (*mongo.Database, error) {
	if cfg.MongoURI == "" {
		return nil, errors.New("please define the MONGODB_URI environment variable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Infof("Connected to MongoDB database %q", cfg.MongoDatabase)
	return client.Database(cfg.MongoDatabase), nil
}

// DisconnectDB closes the client behind db.
func DisconnectDB(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		log.Warnf("Failed to disconnect from MongoDB: %v", err)
	}
}
