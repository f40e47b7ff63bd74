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
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/reelworthy/cinedex/ai"
	"github.com/reelworthy/cinedex/catalog"
	"github.com/reelworthy/cinedex/chunk"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/ratelimit"
	"github.com/reelworthy/cinedex/storage"
)

// Summary reports the outcome of an ingestion run.
type Summary struct {
	Inserted int // documents the store accepted
	Skipped  int // documents recognized as duplicates, in-run or store-side
	Filtered int // items dropped by validation or the rating floor
	Failed   int // items that errored past the retry budget
	Pages    int // catalog pages committed to the checkpoint
}

// Pipeline orchestrates a checkpointed ingestion run: crawl the catalog
// partition by partition, process each page's items concurrently, flush
// the batch writer, then commit the checkpoint. Each external service
// (catalog, enrichment, embedding, store) runs behind its own
// rate-limited executor so one service's throttling never stalls the
// others' budgets.
type Pipeline struct {
	source      catalog.Source
	store       storage.VectorStore
	embedder    ai.Embedder
	checkpoints storage.CheckpointRepository

	config      Config
	chunker     *chunk.Chunker
	pool        *ants.Pool
	catalogExec *ratelimit.Executor
	enrichExec  *ratelimit.Executor
	embedExec   *ratelimit.Executor
	storeExec   *ratelimit.Executor
	progress    *ProgressTracker
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress enables progress reporting to w every interval items.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) {
		p.progress = NewProgressTracker(w, interval)
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	source catalog.Source,
	store storage.VectorStore,
	embedder ai.Embedder,
	checkpoints storage.CheckpointRepository,
	config Config,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}

	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(config.ConcurrencyLimit)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		source:      source,
		store:       store,
		embedder:    embedder,
		checkpoints: checkpoints,
		config:      config,
		chunker:     chunk.New(chunk.WithSize(config.ChunkSize), chunk.WithOverlap(config.ChunkOverlap)),
		pool:        pool,
		progress:    NewProgressTracker(io.Discard, 100),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "ingestion")

	for _, class := range []struct {
		label string
		dest  **ratelimit.Executor
	}{
		{"catalog", &p.catalogExec},
		{"enrichment", &p.enrichExec},
		{"embedding", &p.embedExec},
		{"store", &p.storeExec},
	} {
		exec, execErr := ratelimit.NewExecutor(class.label, config.RateLimitDelay,
			config.RetryLimit, config.BaseDelay, ratelimit.WithLogger(p.logger))
		if execErr != nil {
			pool.Release()
			return nil, execErr
		}
		*class.dest = exec
	}

	return p, nil
}

// Run executes the ingestion. The checkpoint is read once at the start;
// partitions already marked complete are skipped, and each remaining
// partition resumes at its first uncommitted page. Run returns the
// summary alongside any error so callers can report partial progress.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	checkpoint, err := p.checkpoints.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint == nil {
		checkpoint = core.NewCheckpoint()
	}

	if err := p.store.EnsureCollection(ctx, p.config.VectorDimension); err != nil {
		return nil, fmt.Errorf("preparing collection: %w", err)
	}

	summary := &Summary{}
	ledger := NewLedger(p.store, p.storeExec)
	writer := NewBatchWriter(p.store, p.storeExec, p.config.BatchSize)
	proc := &itemProcessor{
		source:     p.source,
		embedder:   p.embedder,
		chunker:    p.chunker,
		ledger:     ledger,
		writer:     writer,
		enrichExec: p.enrichExec,
		embedExec:  p.embedExec,
		minRating:  p.config.MinRating,
		logger:     p.logger,
	}

	p.progress.Start()
	defer p.progress.Finish()

	var runErr error
	for _, year := range p.config.Years {
		if checkpoint.IsCompleted(year) {
			p.logger.Info("partition already complete, skipping", "year", year)
			continue
		}

		if err := p.runPartition(ctx, year, checkpoint, proc, writer, summary); err != nil {
			if !p.config.ContinueOnError {
				runErr = fmt.Errorf("partition %d: %w", year, err)
				break
			}
			p.logger.Error("partition failed, continuing", "year", year, "error", err)
		}
	}

	// Pick up anything still buffered after a mid-page stop.
	if err := writer.Flush(ctx); err != nil && runErr == nil {
		runErr = err
	}

	summary.Inserted, summary.Skipped = writer.Counts()
	summary.Skipped += proc.ledgerSkips()

	p.logger.Info("ingestion finished",
		"inserted", summary.Inserted,
		"skipped", summary.Skipped,
		"filtered", summary.Filtered,
		"failed", summary.Failed,
		"pages", summary.Pages)

	return summary, runErr
}

// runPartition crawls one release year from its first uncommitted page.
// The checkpoint advances only after the page's documents are flushed,
// so a crash replays at most one page.
func (p *Pipeline) runPartition(
	ctx context.Context,
	year int,
	checkpoint *core.Checkpoint,
	proc *itemProcessor,
	writer *BatchWriter,
	summary *Summary,
) error {
	checkpoint.CurrentPartition = year

	for page := checkpoint.NextPage(year); page <= p.config.MaxPagesPerPartition; page++ {
		var items []core.CatalogItem
		err := p.catalogExec.Execute(ctx, func() error {
			var fetchErr error
			items, fetchErr = p.source.FetchPage(ctx, year, page)
			return fetchErr
		})
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(items) == 0 {
			checkpoint.MarkCompleted(year)
			if err := p.checkpoints.Save(ctx, checkpoint); err != nil {
				return fmt.Errorf("saving checkpoint: %w", err)
			}
			p.logger.Info("partition exhausted", "year", year, "pages", page-1)
			return nil
		}

		if err := p.processPage(ctx, items, proc, summary); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}

		if err := writer.Flush(ctx); err != nil {
			return fmt.Errorf("flushing page %d: %w", page, err)
		}

		checkpoint.MarkPageDone(year, page)
		if err := p.checkpoints.Save(ctx, checkpoint); err != nil {
			return fmt.Errorf("saving checkpoint: %w", err)
		}
		summary.Pages++
		p.logger.Debug("page committed", "year", year, "page", page, "items", len(items))
	}

	// Page cap reached; the partition is as done as it is allowed to get.
	checkpoint.MarkCompleted(year)
	if err := p.checkpoints.Save(ctx, checkpoint); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	p.logger.Info("partition reached page cap", "year", year, "pages", p.config.MaxPagesPerPartition)
	return nil
}

// processPage runs one page's items through the worker pool and waits
// for all of them.
func (p *Pipeline) processPage(ctx context.Context, items []core.CatalogItem, proc *itemProcessor, summary *Summary) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	for i := range items {
		item := items[i]
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer p.progress.Increment(1)

			stats, procErr := proc.process(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			summary.Filtered += stats.filtered
			if procErr != nil {
				failed++
				summary.Failed++
				p.logger.Error("item failed", "id", item.ID, "title", item.Title, "error", procErr)
			}
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submitting item %d: %w", item.ID, err)
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 && !p.config.ContinueOnError {
		return fmt.Errorf("%d of %d items failed", failed, len(items))
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
