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
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/reelworthy/cinedex/ai"
	"github.com/reelworthy/cinedex/catalog"
	"github.com/reelworthy/cinedex/chunk"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/ratelimit"
)

// itemStats counts the per-item outcomes that do not flow through the
// batch writer.
type itemStats struct {
	filtered int // items dropped by validation or the rating floor
	skipped  int // chunks the ledger recognized before embedding
	embedded int // chunks handed to the writer
}

// itemProcessor turns one catalog item into indexed documents: enrich,
// compose, chunk, dedup, embed, buffer.
type itemProcessor struct {
	source     catalog.Source
	embedder   ai.Embedder
	chunker    *chunk.Chunker
	ledger     *Ledger
	writer     *BatchWriter
	enrichExec *ratelimit.Executor
	embedExec  *ratelimit.Executor
	minRating  float64
	logger     *slog.Logger

	skips atomic.Int64
}

// ledgerSkips returns the number of chunks skipped before embedding.
func (p *itemProcessor) ledgerSkips() int {
	return int(p.skips.Load())
}

// process runs the full per-item path. Enrichment failures degrade to an
// empty provider list; all other failures abort the item.
func (p *itemProcessor) process(ctx context.Context, item core.CatalogItem) (itemStats, error) {
	var stats itemStats

	if err := core.ValidateCatalogItem(&item); err != nil {
		p.logger.Debug("dropping invalid item", "id", item.ID, "error", err)
		stats.filtered++
		return stats, nil
	}

	if !core.MeetsRatingFloor(&item, p.minRating) {
		stats.filtered++
		return stats, nil
	}

	providers := p.enrich(ctx, item.ID)
	text := composeText(&item, providers)

	for _, fragment := range p.chunker.Split(item.ID, text) {
		id := core.DocumentID(item.Title, item.ReleaseDate, fragment.Index)

		seen, err := p.ledger.Seen(ctx, id)
		if err != nil {
			return stats, fmt.Errorf("dedup check for %q chunk %d: %w", item.Title, fragment.Index, err)
		}
		if seen {
			stats.skipped++
			p.skips.Add(1)
			continue
		}

		var vector []float32
		err = p.embedExec.Execute(ctx, func() error {
			var embedErr error
			vector, embedErr = p.embedder.EmbedText(ctx, fragment.Text)
			return embedErr
		})
		if err != nil {
			return stats, fmt.Errorf("embedding %q chunk %d: %w", item.Title, fragment.Index, err)
		}

		doc := core.IndexedDocument{
			ID:          id,
			Vector:      vector,
			Text:        fragment.Text,
			Title:       item.Title,
			Rating:      item.Rating,
			ReleaseDate: item.ReleaseDate,
			Year:        item.Year,
			Providers:   providers,
			SourceURL:   item.SourceURL,
			ChunkIndex:  fragment.Index,
		}
		if err := p.writer.Add(ctx, doc); err != nil {
			return stats, err
		}

		p.ledger.Mark(id)
		stats.embedded++
	}

	return stats, nil
}

// enrich looks up the item's distribution channels. Best effort only.
func (p *itemProcessor) enrich(ctx context.Context, itemID int64) []string {
	var record core.EnrichmentRecord
	err := p.enrichExec.Execute(ctx, func() error {
		var fetchErr error
		record, fetchErr = p.source.FetchEnrichment(ctx, itemID)
		return fetchErr
	})
	if err != nil {
		p.logger.Warn("enrichment lookup failed, continuing without providers",
			"item_id", itemID, "error", err)
		return nil
	}
	return record.Providers
}

// composeText builds the document text that gets chunked and embedded.
// The header repeats in every chunk's context window, so it stays short.
func composeText(item *core.CatalogItem, providers []string) string {
	var b strings.Builder
	b.WriteString(item.Title)
	b.WriteString(" (")
	b.WriteString(item.ReleaseDate)
	b.WriteString(")")
	if len(providers) > 0 {
		b.WriteString("\nWatch on: ")
		b.WriteString(strings.Join(providers, ", "))
	}
	b.WriteString("\n\n")
	b.WriteString(item.Synopsis)
	return b.String()
}
