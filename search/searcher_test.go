package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/reelworthy/cinedex/ai/mock"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/storage"
	storemock "github.com/reelworthy/cinedex/storage/mock"
)

func seedStore(t *testing.T, store *storemock.MockVectorStore, embedder *aimock.MockEmbedder, docs ...core.IndexedDocument) {
	t.Helper()
	ctx := context.Background()
	for i := range docs {
		vector, err := embedder.EmbedText(ctx, docs[i].Text)
		require.NoError(t, err)
		docs[i].Vector = vector
	}
	store.Seed(docs...)
}

func TestNewSearcher_RequiresDependencies(t *testing.T) {
	store := storemock.NewMockVectorStore()
	embedder := aimock.NewMockEmbedder()

	_, err := NewSearcher(nil, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewSearcher(store, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	s, err := NewSearcher(store, embedder)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSearcher_FindRanksExactTextFirst(t *testing.T) {
	store := storemock.NewMockVectorStore()
	embedder := aimock.NewMockEmbedder()

	seedStore(t, store, embedder,
		core.IndexedDocument{ID: "a", Text: "a heist crew plans one last job", Title: "Heist"},
		core.IndexedDocument{ID: "b", Text: "a quiet countryside romance", Title: "Romance"},
		core.IndexedDocument{ID: "c", Text: "giant robots defend the city", Title: "Robots"},
	)

	s, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	// The mock embedder is deterministic, so the identical text embeds to
	// the identical vector and must rank first.
	matches, err := s.Find(context.Background(), "a heist crew plans one last job", 3, nil)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Heist", matches[0].Document.Title)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-4)
}

func TestSearcher_FindAppliesFilters(t *testing.T) {
	store := storemock.NewMockVectorStore()
	embedder := aimock.NewMockEmbedder()

	seedStore(t, store, embedder,
		core.IndexedDocument{ID: "a", Text: "space opera", Title: "Old", Year: 1999, Rating: 9},
		core.IndexedDocument{ID: "b", Text: "space opera", Title: "New", Year: 2020, Rating: 9},
		core.IndexedDocument{ID: "c", Text: "space opera", Title: "Bad", Year: 2020, Rating: 3},
	)

	s, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	matches, err := s.Find(context.Background(), "space opera", 10,
		&storage.SearchOptions{Year: 2020, MinRating: 5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "New", matches[0].Document.Title)
}

func TestSearcher_FindRejectsEmptyQuery(t *testing.T) {
	s, err := NewSearcher(storemock.NewMockVectorStore(), aimock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = s.Find(context.Background(), "   ", 5, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearcher_FindDefaultsLimit(t *testing.T) {
	store := storemock.NewMockVectorStore()
	embedder := aimock.NewMockEmbedder()

	docs := make([]core.IndexedDocument, 15)
	for i := range docs {
		docs[i] = core.IndexedDocument{ID: string(rune('a' + i)), Text: "crime drama"}
	}
	seedStore(t, store, embedder, docs...)

	s, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	matches, err := s.Find(context.Background(), "crime drama", 0, nil)
	require.NoError(t, err)
	assert.Len(t, matches, DefaultLimit)
}

func TestSearcher_FindPropagatesEmbedderError(t *testing.T) {
	embedErr := errors.New("model offline")
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	}

	s, err := NewSearcher(storemock.NewMockVectorStore(), embedder)
	require.NoError(t, err)

	_, err = s.Find(context.Background(), "anything", 5, nil)
	assert.ErrorIs(t, err, embedErr)
}
