package catalog

import (
	"context"

	"github.com/reelworthy/cinedex/core"
)

// Source provides paginated access to the external film catalog.
// Implementations must be thread-safe for concurrent use.
type Source interface {
	// FetchPage retrieves one page of catalog items for a partition
	// (release year). Pages are 1-based. An empty slice signals that the
	// partition is exhausted.
	FetchPage(ctx context.Context, year, page int) ([]core.CatalogItem, error)

	// FetchEnrichment retrieves the distribution-channel names for an
	// item. It is best-effort: callers treat a failure as an empty
	// record, never as a pipeline error.
	FetchEnrichment(ctx context.Context, itemID int64) (core.EnrichmentRecord, error)
}
