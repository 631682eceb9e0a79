// Package mongostore persists bizdesk collection blobs as documents in one
// MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dwoolworth/bizdesk"
)

// DefaultCollection is the Mongo collection blobs are stored in.
const DefaultCollection = "bizdesk_blobs"

type blobDoc struct {
	Key       string    `bson:"_id"`
	Body      []byte    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store keeps one document per blob key. A single-document upsert is atomic in
// MongoDB, which is all bizdesk.Backend asks for.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// Connect establishes a connection to MongoDB, pings it, and returns a store
// on dbName. Close disconnects the client.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: failed to connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: failed to ping: %w", err)
	}

	s := New(client.Database(dbName), DefaultCollection)
	s.owned = true
	return s, nil
}

// New returns a store on an existing database handle. The caller keeps
// ownership of the client.
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{client: db.Client(), coll: db.Collection(collection)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var doc blobDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, bizdesk.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: get %q: %w", key, err)
	}
	if doc.Body == nil {
		doc.Body = []byte{}
	}
	return doc.Body, nil
}

func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if key == "" {
		return fmt.Errorf("mongostore: empty key")
	}
	if blob == nil {
		blob = []byte{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "body", Value: blob},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: key}}, update, opts); err != nil {
		return fmt.Errorf("mongostore: put %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return fmt.Errorf("mongostore: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Close disconnects the client when the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ bizdesk.Backend = (*Store)(nil)
