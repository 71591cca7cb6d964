// Package mongo stores the mind map as one snapshot document in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pgy3-backend/infrastructure/persistence"
)

const (
	DefaultDatabase   = "pgy3"
	DefaultCollection = "mindmap_documents"
	DefaultKey        = "default"
)

type snapshot struct {
	ID        string    `bson:"_id"`
	Document  bson.Raw  `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Medium struct {
	client     *mongo.Client
	collection *mongo.Collection
	key        string
}

// Connect dials uri and pings the server before returning.
func Connect(ctx context.Context, uri, database, key string) (*Medium, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	if database == "" {
		database = DefaultDatabase
	}
	m := New(client.Database(database).Collection(DefaultCollection), key)
	m.client = client
	return m, nil
}

// New uses an existing collection. Close is then a no-op.
func New(collection *mongo.Collection, key string) *Medium {
	if key == "" {
		key = DefaultKey
	}
	return &Medium{collection: collection, key: key}
}

func (m *Medium) Name() string { return "mongo" }

func (m *Medium) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	var snap snapshot
	err := m.collection.FindOne(ctx, bson.M{"_id": m.key}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	data, err := bson.MarshalExtJSON(snap.Document, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document to JSON: %w", err)
	}
	return data, nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	doc, err := toBSON(data)
	if err != nil {
		return err
	}
	_, err = m.collection.ReplaceOne(ctx,
		bson.M{"_id": m.key},
		bson.M{"_id": m.key, "document": doc, "updated_at": time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	doc, err := toBSON(data)
	if err != nil {
		return false, err
	}
	_, err = m.collection.InsertOne(ctx, bson.M{"_id": m.key, "document": doc, "updated_at": time.Now().UTC()})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert document: %w", err)
	}
	return true, nil
}

// toBSON parses relaxed extended JSON, which plain JSON is a subset of.
func toBSON(data []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert document to BSON: %w", err)
	}
	return doc, nil
}
