package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/reelworthy/cinedex/ai/mock"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/storage"
	"github.com/reelworthy/cinedex/storage/badger"
	storemock "github.com/reelworthy/cinedex/storage/mock"
)

// fakeSource serves catalog pages from memory. Keys are (year, page).
type fakeSource struct {
	mu        sync.Mutex
	pages     map[[2]int][]core.CatalogItem
	providers map[int64][]string
	pageCalls [][2]int
	pageErr   error
	enrichErr error
}

func (s *fakeSource) FetchPage(ctx context.Context, year, page int) ([]core.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCalls = append(s.pageCalls, [2]int{year, page})
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	return s.pages[[2]int{year, page}], nil
}

func (s *fakeSource) FetchEnrichment(ctx context.Context, itemID int64) (core.EnrichmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrichErr != nil {
		return core.EnrichmentRecord{}, s.enrichErr
	}
	return core.EnrichmentRecord{ItemID: itemID, Providers: s.providers[itemID]}, nil
}

func (s *fakeSource) fetchedPages() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]int, len(s.pageCalls))
	copy(out, s.pageCalls)
	return out
}

func testConfig(years ...int) Config {
	return Config{
		Years:                years,
		RetryLimit:           1,
		ConcurrencyLimit:     2,
		MaxPagesPerPartition: 10,
		VectorDimension:      aimock.DefaultDimension,
		BatchSize:            50,
	}
}

func newTestPipeline(t *testing.T, source *fakeSource, store storage.VectorStore, cfg Config) (*Pipeline, storage.CheckpointRepository) {
	t.Helper()

	checkpoints, err := badger.NewMemoryCheckpointRepository()
	require.NoError(t, err)
	t.Cleanup(func() { checkpoints.Close() })

	pipeline, err := NewPipeline(source, store, aimock.NewMockEmbedder(), checkpoints, cfg)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, checkpoints
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	source := &fakeSource{}
	store := storemock.NewMockVectorStore()
	embedder := aimock.NewMockEmbedder()
	checkpoints, err := badger.NewMemoryCheckpointRepository()
	require.NoError(t, err)
	defer checkpoints.Close()

	cfg := testConfig(2020)

	_, err = NewPipeline(nil, store, embedder, checkpoints, cfg)
	assert.ErrorIs(t, err, ErrSourceRequired)

	_, err = NewPipeline(source, nil, embedder, checkpoints, cfg)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(source, store, nil, checkpoints, cfg)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(source, store, embedder, nil, cfg)
	assert.ErrorIs(t, err, ErrCheckpointsRequired)

	_, err = NewPipeline(source, store, embedder, checkpoints, Config{})
	assert.ErrorIs(t, err, ErrNoPartitions)
}

func TestPipeline_SinglePartition(t *testing.T) {
	// Item 1 composes to 1816 bytes, which chunks into 5 fragments at the
	// default 512/100 geometry. Item 2 sits below the rating floor.
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2020, 1}: {
				{
					ID:          1,
					Title:       "A",
					Synopsis:    strings.Repeat("s", 1800),
					ReleaseDate: "2020-05-01",
					Rating:      8.2,
					Year:        2020,
				},
				{
					ID:          2,
					Title:       "B",
					Synopsis:    "short and poorly received",
					ReleaseDate: "2020-06-15",
					Rating:      5.0,
					Year:        2020,
				},
			},
		},
		providers: map[int64][]string{1: {"Neteflicks"}},
	}
	store := storemock.NewMockVectorStore()

	cfg := testConfig(2020)
	cfg.MinRating = 7.0
	pipeline, checkpoints := newTestPipeline(t, source, store, cfg)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Inserted)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, aimock.DefaultDimension, store.Dimension())

	// Every document carries the item metadata and a deterministic ID.
	id := core.DocumentID("A", "2020-05-01", 0)
	doc, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "A", doc.Title)
	assert.Equal(t, []string{"Neteflicks"}, doc.Providers)
	assert.Len(t, doc.Vector, aimock.DefaultDimension)

	// Partition completed: pages 1 and 2 were fetched, checkpoint records
	// the completion.
	assert.Equal(t, [][2]int{{2020, 1}, {2020, 2}}, source.fetchedPages())
	cp, err := checkpoints.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.IsCompleted(2020))
}

func TestPipeline_ResumesFromCheckpoint(t *testing.T) {
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2020, 1}: {{ID: 1, Title: "One", Synopsis: "already ingested", ReleaseDate: "2020-01-01", Rating: 8, Year: 2020}},
			{2020, 2}: {{ID: 2, Title: "Two", Synopsis: "fresh material", ReleaseDate: "2020-02-01", Rating: 8, Year: 2020}},
		},
	}
	store := storemock.NewMockVectorStore()
	pipeline, checkpoints := newTestPipeline(t, source, store, testConfig(2020))

	// A previous run committed page 1.
	cp := core.NewCheckpoint()
	cp.MarkPageDone(2020, 1)
	require.NoError(t, checkpoints.Save(context.Background(), cp))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted, "only page 2's document should be new")
	for _, call := range source.fetchedPages() {
		assert.NotEqual(t, [2]int{2020, 1}, call, "committed pages must not be re-fetched")
	}
}

func TestPipeline_SkipsCompletedPartition(t *testing.T) {
	source := &fakeSource{pages: map[[2]int][]core.CatalogItem{}}
	store := storemock.NewMockVectorStore()
	pipeline, checkpoints := newTestPipeline(t, source, store, testConfig(2019, 2020))

	cp := core.NewCheckpoint()
	cp.MarkCompleted(2019)
	require.NoError(t, checkpoints.Save(context.Background(), cp))

	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	for _, call := range source.fetchedPages() {
		assert.NotEqual(t, 2019, call[0], "completed partitions must not be crawled")
	}
}

func TestPipeline_RerunSkipsEverything(t *testing.T) {
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2021, 1}: {{ID: 3, Title: "Three", Synopsis: "some synopsis text", ReleaseDate: "2021-03-01", Rating: 9, Year: 2021}},
		},
	}
	store := storemock.NewMockVectorStore()

	pipeline, checkpoints := newTestPipeline(t, source, store, testConfig(2021))
	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted)

	// Fresh checkpoint, same store: the rerun re-embeds nothing new and
	// the store rejects the duplicate identifiers.
	require.NoError(t, checkpoints.Reset(context.Background()))
	second, _ := newTestPipeline(t, source, store, testConfig(2021))

	summary, err = second.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, store.Len())
}

func TestPipeline_EnrichmentFailureIsBestEffort(t *testing.T) {
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2020, 1}: {{ID: 4, Title: "Four", Synopsis: "synopsis", ReleaseDate: "2020-04-01", Rating: 8, Year: 2020}},
		},
		enrichErr: errors.New("providers endpoint down"),
	}
	store := storemock.NewMockVectorStore()
	pipeline, _ := newTestPipeline(t, source, store, testConfig(2020))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Failed)

	doc, ok := store.Get(core.DocumentID("Four", "2020-04-01", 0))
	require.True(t, ok)
	assert.Empty(t, doc.Providers)
}

func TestPipeline_PageFetchFailureStopsRun(t *testing.T) {
	source := &fakeSource{pageErr: errors.New("catalog unreachable")}
	store := storemock.NewMockVectorStore()
	pipeline, checkpoints := newTestPipeline(t, source, store, testConfig(2020))

	summary, err := pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, summary.Pages)

	cp, loadErr := checkpoints.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Nil(t, cp, "a failed page must not advance the checkpoint")
}

func TestPipeline_ContinueOnErrorKeepsGoing(t *testing.T) {
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2020, 1}: {{ID: 5, Title: "Five", Synopsis: "synopsis", ReleaseDate: "2020-05-05", Rating: 8, Year: 2020}},
		},
	}
	store := storemock.NewMockVectorStore()

	embedErr := errors.New("model overloaded")
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	}

	checkpoints, err := badger.NewMemoryCheckpointRepository()
	require.NoError(t, err)
	defer checkpoints.Close()

	cfg := testConfig(2020)
	cfg.ContinueOnError = true
	pipeline, err := NewPipeline(source, store, embedder, checkpoints, cfg)
	require.NoError(t, err)
	defer pipeline.Release()

	summary, runErr := pipeline.Run(context.Background())
	require.NoError(t, runErr, "continue-on-error runs should not surface item failures")
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Inserted)
}

func TestPipeline_InvalidItemsAreFiltered(t *testing.T) {
	source := &fakeSource{
		pages: map[[2]int][]core.CatalogItem{
			{2020, 1}: {
				{ID: 6, Title: "", Synopsis: "no title", ReleaseDate: "2020-06-06", Rating: 8, Year: 2020},
				{ID: 7, Title: "Seven", Synopsis: "", ReleaseDate: "2020-07-07", Rating: 8, Year: 2020},
			},
		},
	}
	store := storemock.NewMockVectorStore()
	pipeline, _ := newTestPipeline(t, source, store, testConfig(2020))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Filtered)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 0, summary.Failed)
}
