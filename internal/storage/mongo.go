package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

type mongoRecord struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// MongoStore keeps each key as a single document so conditional updates
// ride on MongoDB's per-document atomicity. A TTL index on expires_at
// reaps expired documents; reads treat not-yet-reaped ones as absent.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the TTL index exists.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	// expireAfterSeconds=0 deletes a document as soon as expires_at is in
	// the past; documents without the field are never reaped.
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: create ttl index: %w", err)
	}

	return &MongoStore{client: client, collection: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("mongo: find: %w", err)
	}

	// The TTL monitor only runs every 60 seconds, so an expired document
	// may still be present.
	if rec.ExpiresAt != nil && !rec.ExpiresAt.After(time.Now()) {
		_, _ = s.collection.DeleteOne(ctx, bson.M{"_id": key})
		return nil, ErrKeyNotFound
	}

	return rec.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	rec := mongoRecord{Key: key, Value: value}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: set: %w", err)
	}
	return nil
}

func (s *MongoStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	rec := mongoRecord{Key: key, Value: value, ExpiresAt: &expires}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: set with expiry: %w", err)
	}
	return nil
}

func (s *MongoStore) CompareAndSet(ctx context.Context, key string, expected, replacement []byte) (bool, error) {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": key, "value": expected},
		bson.M{"$set": bson.M{"value": replacement}},
	)
	if err != nil {
		return false, fmt.Errorf("mongo: compare and set: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo: delete: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
