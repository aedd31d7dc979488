package submit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "atlas"
	DefaultMongoCollection = "submissions"
)

// MongoOptions configures a [MongoQueue].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoQueue inserts entries into a MongoDB collection keyed by entry id.
type MongoQueue struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoQueue connects and pings the server.
func NewMongoQueue(ctx context.Context, opts MongoOptions) (*MongoQueue, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoQueue{client: client, coll: client.Database(opts.Database).Collection(opts.Collection)}, nil
}

func (q *MongoQueue) String() string { return "mongo" }

func (q *MongoQueue) Append(ctx context.Context, e Entry) error {
	if _, err := q.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// List returns entries in submission order, optionally restricted to one
// category.
func (q *MongoQueue) List(ctx context.Context, category string) ([]Entry, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := q.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return out, nil
}

func (q *MongoQueue) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return q.client.Disconnect(ctx)
}
