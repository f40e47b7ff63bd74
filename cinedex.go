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


// Package cinedex assembles the film-catalog ingestion pipeline and the
// semantic search layer on top of it: a TMDB-backed catalog source, an
// OpenAI-compatible embedder, a MongoDB vector store, and a Badger-backed
// checkpoint repository.
package cinedex

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/reelworthy/cinedex/ai"
	"github.com/reelworthy/cinedex/ai/openai"
	"github.com/reelworthy/cinedex/catalog"
	"github.com/reelworthy/cinedex/catalog/tmdb"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/ingestion"
	"github.com/reelworthy/cinedex/search"
	"github.com/reelworthy/cinedex/storage"
	"github.com/reelworthy/cinedex/storage/badger"
	"github.com/reelworthy/cinedex/storage/mongo"
)

var (
	// ErrMongoConfigRequired is returned when no store configuration is provided.
	ErrMongoConfigRequired = errors.New("mongo configuration required")

	// ErrCheckpointPathRequired is returned when no checkpoint path is provided.
	ErrCheckpointPathRequired = errors.New("checkpoint path required")
)

// Config wires the external services together.
type Config struct {
	// CatalogAPIKey authenticates against the catalog API.
	CatalogAPIKey string

	// CheckpointPath is the directory holding the local checkpoint database.
	CheckpointPath string

	// Mongo configures the vector store connection.
	Mongo *mongo.Config

	// AI configures the embedding service. Nil uses ai.DefaultConfig.
	AI *ai.Config

	// Ingestion holds the run parameters. Years must be set before Ingest.
	Ingestion ingestion.Config
}

// Index is the assembled system: one handle for ingesting the catalog
// and searching the result.
type Index struct {
	source      catalog.Source
	store       storage.VectorStore
	embedder    ai.Embedder
	checkpoints storage.CheckpointRepository
	config      Config
	progressW   io.Writer
	logger      *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithProgress enables ingestion progress reporting to w.
func WithProgress(w io.Writer) Option {
	return func(ix *Index) {
		ix.progressW = w
	}
}

// New connects to the external services and returns a ready Index.
// The caller owns the returned Index and must Close it.
func New(ctx context.Context, config Config, opts ...Option) (*Index, error) {
	if config.Mongo == nil {
		return nil, ErrMongoConfigRequired
	}
	if config.CheckpointPath == "" {
		return nil, ErrCheckpointPathRequired
	}

	aiConfig := config.AI
	if aiConfig == nil {
		aiConfig = ai.DefaultConfig()
	}
	if config.Ingestion.VectorDimension == 0 {
		config.Ingestion.VectorDimension = aiConfig.Dimension
	}

	source, err := tmdb.NewClient(config.CatalogAPIKey, tmdb.WithRegion(config.Ingestion.Region))
	if err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, err
	}

	checkpoints, err := badger.NewCheckpointRepository(config.CheckpointPath)
	if err != nil {
		return nil, err
	}

	store, err := mongo.NewStore(ctx, config.Mongo)
	if err != nil {
		checkpoints.Close()
		return nil, err
	}

	ix := &Index{
		source:      source,
		store:       store,
		embedder:    embedder,
		checkpoints: checkpoints,
		config:      config,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix, nil
}

// Ingest runs the full checkpointed ingestion with the configured
// parameters and returns the run summary.
func (ix *Index) Ingest(ctx context.Context) (*ingestion.Summary, error) {
	pipelineOpts := []ingestion.Option{ingestion.WithLogger(ix.logger)}
	if ix.progressW != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(ix.progressW, 25))
	}

	pipeline, err := ingestion.NewPipeline(ix.source, ix.store, ix.embedder,
		ix.checkpoints, ix.config.Ingestion, pipelineOpts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	return pipeline.Run(ctx)
}

// Search embeds the query and returns the best-matching documents.
func (ix *Index) Search(ctx context.Context, query string, limit int, opts *storage.SearchOptions) ([]storage.Match, error) {
	searcher, err := search.NewSearcher(ix.store, ix.embedder, search.WithLogger(ix.logger))
	if err != nil {
		return nil, err
	}
	return searcher.Find(ctx, query, limit, opts)
}

// Checkpoint returns the persisted crawl position, or nil when no run
// has committed yet.
func (ix *Index) Checkpoint(ctx context.Context) (*core.Checkpoint, error) {
	return ix.checkpoints.Load(ctx)
}

// ResetCheckpoint discards the persisted crawl position so the next
// Ingest starts from scratch.
func (ix *Index) ResetCheckpoint(ctx context.Context) error {
	return ix.checkpoints.Reset(ctx)
}

// Close releases the store connection and the checkpoint database.
func (ix *Index) Close(ctx context.Context) error {
	if err := ix.store.Close(ctx); err != nil {
		ix.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := ix.checkpoints.Close(); err != nil {
		ix.logger.Error("error closing checkpoint repository", "err", err)
		return err
	}
	return nil
}
