// Copyright 2025 Reelworthy
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds connection settings for the vector store.
type Config struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name.
	// Default: "cinedex"
	Database string

	// Collection is the collection holding IndexedDocuments.
	// Default: "documents"
	Collection string

	// SearchIndex is the name of the Atlas vector search index.
	// Default: "vector_index"
	SearchIndex string
}

// DefaultConfig returns a Config with sensible defaults for a local
// deployment.
func DefaultConfig() *Config {
	return &Config{
		URI:         "mongodb://localhost:27017",
		Database:    "cinedex",
		Collection:  "documents",
		SearchIndex: "vector_index",
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("mongo config: URI is required")
	}
	if c.Database == "" {
		return errors.New("mongo config: Database is required")
	}
	if c.Collection == "" {
		return errors.New("mongo config: Collection is required")
	}
	if c.SearchIndex == "" {
		return errors.New("mongo config: SearchIndex is required")
	}
	return nil
}

// Store implements storage.VectorStore on a MongoDB collection with an
// Atlas vector search index.
type Store struct {
	client      *mongo.Client
	collection  *mongo.Collection
	database    string
	searchIndex string
	logger      *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore connects to MongoDB and returns the vector store.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewStore(ctx context.Context, config *Config) (storage.VectorStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &Store{
		client:      client,
		collection:  client.Database(config.Database).Collection(config.Collection),
		database:    config.Database,
		searchIndex: config.SearchIndex,
		logger:      slog.Default().With("component", "mongo-store"),
	}, nil
}

// EnsureCollection creates the collection and its cosine vector search
// index if absent. Safe to call on every startup.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	db := s.client.Database(s.database)

	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: s.collection.Name()}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if len(names) == 0 {
		if err := db.CreateCollection(ctx, s.collection.Name()); err != nil && !isNamespaceExists(err) {
			return fmt.Errorf("create collection: %w", err)
		}
		s.logger.Info("created collection", "collection", s.collection.Name())
	}

	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "vector"},
				{Key: "numDimensions", Value: dimension},
				{Key: "similarity", Value: "cosine"},
			},
			bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "year"}},
			bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "rating"}},
		}},
	}

	model := mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(s.searchIndex).SetType("vectorSearch"),
	}

	if _, err := s.collection.SearchIndexes().CreateOne(ctx, model); err != nil {
		if isIndexExists(err) {
			return nil
		}
		return fmt.Errorf("create vector search index: %w", err)
	}

	s.logger.Info("created vector search index",
		"index", s.searchIndex, "dimension", dimension, "similarity", "cosine")
	return nil
}

// Exists reports whether a document with the given identifier is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("existence lookup: %w", err)
	}
	return true, nil
}

// BulkInsert persists documents as one unordered bulk write. Duplicate
// identifiers are counted as skipped. When the bulk write fails for
// reasons beyond duplicates, it falls back to per-document inserts so
// non-conflicting documents still land.
func (s *Store) BulkInsert(ctx context.Context, docs []core.IndexedDocument) (storage.BulkResult, error) {
	if len(docs) == 0 {
		return storage.BulkResult{}, nil
	}

	models := make([]mongo.WriteModel, len(docs))
	for i := range docs {
		models[i] = mongo.NewInsertOneModel().SetDocument(fromCore(&docs[i]))
	}

	opts := options.BulkWrite().SetOrdered(false)
	result, err := s.collection.BulkWrite(ctx, models, opts)
	if err == nil {
		return storage.BulkResult{Inserted: int(result.InsertedCount)}, nil
	}

	inserted := 0
	if result != nil {
		inserted = int(result.InsertedCount)
	}

	if duplicates, ok := duplicatesOnly(err); ok {
		return storage.BulkResult{Inserted: inserted, Skipped: duplicates}, nil
	}

	s.logger.Warn("bulk write failed, falling back to per-document inserts",
		"documents", len(docs), "err", err)
	return s.insertEach(ctx, docs)
}

// insertEach is the per-document fallback used when an unordered bulk
// write fails for reasons other than duplicates.
func (s *Store) insertEach(ctx context.Context, docs []core.IndexedDocument) (storage.BulkResult, error) {
	var res storage.BulkResult
	var lastErr error

	for i := range docs {
		_, err := s.collection.InsertOne(ctx, fromCore(&docs[i]))
		if err == nil {
			res.Inserted++
			continue
		}
		if mongo.IsDuplicateKeyError(err) {
			res.Skipped++
			continue
		}
		lastErr = err
	}

	if lastErr != nil {
		return res, fmt.Errorf("per-document insert: %w", lastErr)
	}
	return res, nil
}

// FindSimilar runs a $vectorSearch aggregation returning the top matches
// by cosine similarity.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, limit int, opts *storage.SearchOptions) ([]storage.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	search := bson.D{
		{Key: "index", Value: s.searchIndex},
		{Key: "path", Value: "vector"},
		{Key: "queryVector", Value: vector},
		{Key: "numCandidates", Value: limit * 10},
		{Key: "limit", Value: limit},
	}
	if filter := buildFilter(opts); filter != nil {
		search = append(search, bson.E{Key: "filter", Value: filter})
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: search}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []storage.Match
	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		matches = append(matches, storage.Match{
			Document: doc.toCore(),
			Score:    float32(doc.Score),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return matches, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// buildFilter translates SearchOptions into a $vectorSearch filter.
// Returns nil when no filtering applies.
func buildFilter(opts *storage.SearchOptions) bson.D {
	if opts == nil {
		return nil
	}

	var filter bson.D
	if opts.Year != 0 {
		filter = append(filter, bson.E{Key: "year", Value: opts.Year})
	}
	if opts.MinRating > 0 {
		filter = append(filter, bson.E{Key: "rating", Value: bson.D{{Key: "$gte", Value: opts.MinRating}}})
	}
	return filter
}

// duplicatesOnly reports how many write errors in a bulk failure were
// duplicate-key conflicts, and whether conflicts were the only failures.
func duplicatesOnly(err error) (int, bool) {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return 0, false
	}
	if bulkErr.WriteConcernError != nil {
		return 0, false
	}

	duplicates := 0
	for _, we := range bulkErr.WriteErrors {
		if we.Code != duplicateKeyCode {
			return 0, false
		}
		duplicates++
	}
	return duplicates, duplicates > 0
}

// duplicateKeyCode is MongoDB's E11000 duplicate key error code.
const duplicateKeyCode = 11000

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Name == "NamespaceExists" || cmdErr.Code == 48
	}
	return false
}

func isIndexExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Name == "IndexAlreadyExists" || cmdErr.Code == 68 {
			return true
		}
	}
	return strings.Contains(err.Error(), "already exists")
}
