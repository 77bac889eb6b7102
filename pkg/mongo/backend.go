package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Daviipontes/Dev-Web/pkg/store"
)

const defaultCloseTimeout = 5 * time.Second

// document is one stored collection. Body is the JSON text exactly as the
// store encoded it.
type document struct {
	Name      string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Backend implements store.Backend on a single MongoDB collection.
type Backend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ store.Backend = (*Backend)(nil)

func (b *Backend) Load(ctx context.Context, name string) ([]byte, error) {
	var doc document
	err := b.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", name, store.ErrDocumentMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: load %q: %w", name, err)
	}
	return []byte(doc.Body), nil
}

// Save replaces the whole document in one write.
func (b *Backend) Save(ctx context.Context, name string, data []byte) error {
	doc := document{Name: name, Body: string(data), UpdatedAt: time.Now().UTC()}
	_, err := b.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: save %q: %w", name, err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *Backend) EnsureIndexes(ctx context.Context) error {
	_, err := b.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: -1}},
		Options: options.Index().SetName("idx_documents_updated_at"),
	})
	if err != nil {
		return fmt.Errorf("mongo: create index idx_documents_updated_at: %w", err)
	}
	return nil
}
