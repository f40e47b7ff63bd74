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


package ingestion

import (
	"runtime"
	"time"

	"github.com/reelworthy/cinedex/chunk"
)

// Config holds the tunable parameters of an ingestion run.
type Config struct {
	// Years lists the release-year partitions to ingest, in order.
	Years []int

	// RetryLimit is the maximum number of attempts for each external call.
	// Default: 3
	RetryLimit int

	// BaseDelay is the backoff delay after the first failed attempt.
	// Subsequent retries double it.
	// Default: 500ms
	BaseDelay time.Duration

	// ConcurrencyLimit bounds the number of items processed at once.
	// Default: runtime.NumCPU() / 2, minimum 1
	ConcurrencyLimit int

	// RateLimitDelay is the minimum spacing between consecutive calls to
	// any one external service. Zero disables throttling.
	// Default: 250ms
	RateLimitDelay time.Duration

	// MaxPagesPerPartition caps the crawl depth of a single release year.
	// Default: 500
	MaxPagesPerPartition int

	// MinRating filters out items rated below this floor. Zero admits
	// everything.
	MinRating float64

	// VectorDimension is the embedding dimension the store collection is
	// created with.
	// Default: 768
	VectorDimension int

	// BatchSize is the number of documents buffered before a bulk write.
	// Default: 100
	BatchSize int

	// ChunkSize is the chunk length in bytes.
	// Default: chunk.DefaultSize
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in bytes.
	// Default: chunk.DefaultOverlap
	ChunkOverlap int

	// Region selects which country's distribution channels enrichment
	// lookups return.
	// Default: "US"
	Region string

	// ContinueOnError keeps the run going past failed items and
	// partitions instead of stopping at the first failure.
	ContinueOnError bool
}

// DefaultConfig returns a Config with production defaults. Years must
// still be set by the caller.
func DefaultConfig() Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	return Config{
		RetryLimit:           3,
		BaseDelay:            500 * time.Millisecond,
		ConcurrencyLimit:     poolSize,
		RateLimitDelay:       250 * time.Millisecond,
		MaxPagesPerPartition: 500,
		VectorDimension:      768,
		BatchSize:            100,
		ChunkSize:            chunk.DefaultSize,
		ChunkOverlap:         chunk.DefaultOverlap,
		Region:               "US",
	}
}

// Normalize fills zero-valued fields with their defaults.
func (c *Config) Normalize() {
	defaults := DefaultConfig()

	if c.RetryLimit == 0 {
		c.RetryLimit = defaults.RetryLimit
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = defaults.BaseDelay
	}
	if c.ConcurrencyLimit == 0 {
		c.ConcurrencyLimit = defaults.ConcurrencyLimit
	}
	if c.MaxPagesPerPartition == 0 {
		c.MaxPagesPerPartition = defaults.MaxPagesPerPartition
	}
	if c.VectorDimension == 0 {
		c.VectorDimension = defaults.VectorDimension
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = defaults.ChunkOverlap
	}
	if c.Region == "" {
		c.Region = defaults.Region
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if len(c.Years) == 0 {
		return ErrNoPartitions
	}
	if c.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.VectorDimension < 1 {
		return ErrInvalidDimension
	}
	if c.MaxPagesPerPartition < 1 {
		return ErrInvalidPageCap
	}
	return nil
}
