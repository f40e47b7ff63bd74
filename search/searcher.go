package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reelworthy/cinedex/ai"
	"github.com/reelworthy/cinedex/storage"
)

// DefaultLimit is the number of matches returned when the caller does
// not specify one.
const DefaultLimit = 10

// Searcher answers natural-language queries against the vector store.
type Searcher struct {
	store    storage.VectorStore
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// Find embeds the query and returns up to limit matching documents,
// ranked by similarity score. opts may carry release-year and rating
// filters; nil means unfiltered.
func (s *Searcher) Find(ctx context.Context, query string, limit int, opts *storage.SearchOptions) ([]storage.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.store.FindSimilar(ctx, vector, limit, opts)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	s.logger.Debug("query answered", "query", query, "matches", len(matches))
	return matches, nil
}
