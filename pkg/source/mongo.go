package source

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/pointscape/pkg/dataset"
)

// MongoConfig locates one dataset document in a MongoDB collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string

	// Name selects the dataset document by its "name" field. Empty loads
	// the first document in the collection.
	Name string
}

// MongoSource loads a dataset document from MongoDB. Each document holds a
// complete dataset (mode, items, clusters) under a unique name.
type MongoSource struct {
	cfg    MongoConfig
	client *mongo.Client
}

// NewMongoSource connects to MongoDB and verifies the connection.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSource{cfg: cfg, client: client}, nil
}

// Load implements Source.
func (s *MongoSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	coll := s.client.Database(s.cfg.Database).Collection(s.cfg.Collection)

	filter := bson.M{}
	if s.cfg.Name != "" {
		filter["name"] = s.cfg.Name
	}

	var doc struct {
		Name    string          `bson:"name"`
		Dataset dataset.Dataset `bson:"dataset"`
	}
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("dataset %q not found", s.cfg.Name)
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	d := doc.Dataset
	d.Finalize()
	return &d, nil
}

// Close disconnects from MongoDB.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoSource implements Source.
var _ Source = (*MongoSource)(nil)
