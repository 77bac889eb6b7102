// Package mongo stores collection documents in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

const documentsCollection = "documents"

func GetMongoClient(uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("create MongoDB client: %w", err)
	}
	return client, nil
}

// Connect opens the client, verifies it with a ping and makes sure the
// documents collection is indexed.
func Connect(uri, database string) (*Backend, error) {
	client, err := GetMongoClient(uri)
	if err != nil {
		return nil, err
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	b := &Backend{client: client, coll: client.Database(database).Collection(documentsCollection)}
	if err := b.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.Info("Connected to MongoDB", "database", database)
	return b, nil
}

func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCloseTimeout)
	defer cancel()
	return b.client.Disconnect(ctx)
}
