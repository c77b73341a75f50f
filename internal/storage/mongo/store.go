// Package mongo stores boards, todos, projects, settings and tickets as
// documents in five MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskvault/internal/storage"
)

const (
	boardsCollection   = "boards"
	todosCollection    = "todos"
	projectsCollection = "projects"
	settingsCollection = "settings"
	ticketsCollection  = "tickets"
)

// Store is a storage.Store backed by a MongoDB database.
type Store struct {
	client   *mongo.Client
	boards   *mongo.Collection
	todos    *mongo.Collection
	projects *mongo.Collection
	settings *mongo.Collection
	tickets  *mongo.Collection
	logger   *slog.Logger
	now      func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects to uri, verifies the connection and ensures indexes.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty mongo uri")
	}
	if database == "" {
		return nil, fmt.Errorf("empty mongo database name")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		boards:   db.Collection(boardsCollection),
		todos:    db.Collection(todosCollection),
		projects: db.Collection(projectsCollection),
		settings: db.Collection(settingsCollection),
		tickets:  db.Collection(ticketsCollection),
		logger:   logger,
		now:      time.Now,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongo store ready", slog.String("database", database))
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.boards, mongo.IndexModel{Keys: bson.D{{Key: "userEmail", Value: 1}}}},
		{s.todos, mongo.IndexModel{Keys: bson.D{{Key: "boardId", Value: 1}, {Key: "_id", Value: 1}}}},
		{s.projects, mongo.IndexModel{Keys: bson.D{{Key: "userEmail", Value: 1}}}},
		{s.settings, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot match any document, so they
// are reported as not found.
func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return oid, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return err
}

// creationOrder sorts by insertion time with the id as tie-break.
func creationOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
