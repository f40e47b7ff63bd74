package storage

import (
	"context"

	"github.com/reelworthy/cinedex/core"
)

// BulkResult reports the outcome of one bulk insert. Duplicate-identifier
// conflicts are counted, not treated as failures.
type BulkResult struct {
	Inserted int
	Skipped  int
}

// Match is one similarity-search hit with its relevance score.
type Match struct {
	Document *core.IndexedDocument
	Score    float32
}

// SearchOptions narrows a similarity search. The zero value applies no
// filtering.
type SearchOptions struct {
	// Year restricts matches to one release-year partition. 0 = any.
	Year int

	// MinRating restricts matches to documents at or above the rating.
	MinRating float64
}

// VectorStore is the external document store with similarity search.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// EnsureCollection creates the backing collection and its cosine
	// vector index if absent. dimension is the embedding vector length.
	// Safe to call on every startup.
	EnsureCollection(ctx context.Context, dimension int) error

	// Exists reports whether a document with the given identifier is
	// already stored. Used as the authoritative cross-run dedup check.
	Exists(ctx context.Context, id string) (bool, error)

	// BulkInsert persists documents as one unordered bulk operation, so
	// one document's duplicate conflict cannot abort its siblings.
	// Conflicts are reported in the result, other failures as an error
	// alongside the counts accumulated before the failure.
	BulkInsert(ctx context.Context, docs []core.IndexedDocument) (BulkResult, error)

	// FindSimilar returns up to limit documents ranked by cosine
	// similarity to the query vector. opts may be nil.
	FindSimilar(ctx context.Context, vector []float32, limit int, opts *SearchOptions) ([]Match, error)

	// Close releases the store connection.
	Close(ctx context.Context) error
}

// CheckpointRepository provides durable ingestion progress.
//
// The contract is read-once-at-start, write-after-each-committed-page:
// the orchestrator loads the checkpoint exactly once when a run begins
// and overwrites it after every durably written page, whatever the
// backing medium.
type CheckpointRepository interface {
	// Load retrieves the current checkpoint.
	// Returns nil, nil if no checkpoint exists.
	Load(ctx context.Context) (*core.Checkpoint, error)

	// Save overwrites the checkpoint.
	Save(ctx context.Context, checkpoint *core.Checkpoint) error

	// Reset removes the checkpoint for a fresh start.
	Reset(ctx context.Context) error

	// Close closes the repository and releases resources.
	Close() error
}
