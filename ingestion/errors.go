package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a catalog source is not provided.
	ErrSourceRequired = errors.New("catalog source required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCheckpointsRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointsRequired = errors.New("checkpoint repository required")

	// ErrNoPartitions is returned when the configuration names no release years.
	ErrNoPartitions = errors.New("at least one release year required")

	// ErrInvalidBatchSize is returned when the persistence batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidDimension is returned when the vector dimension is not positive.
	ErrInvalidDimension = errors.New("vector dimension must be positive")

	// ErrInvalidPageCap is returned when the per-partition page cap is not positive.
	ErrInvalidPageCap = errors.New("max pages per partition must be positive")
)
