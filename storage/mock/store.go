package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/storage"
)

// MockVectorStore is an in-memory test double for storage.VectorStore.
// It enforces duplicate-identifier semantics like the real store and
// allows custom behavior injection via function fields.
type MockVectorStore struct {
	// BulkInsertFunc is called by BulkInsert if set.
	BulkInsertFunc func(ctx context.Context, docs []core.IndexedDocument) (storage.BulkResult, error)

	// ExistsFunc is called by Exists if set.
	ExistsFunc func(ctx context.Context, id string) (bool, error)

	mu        sync.Mutex
	docs      map[string]core.IndexedDocument
	dimension int

	bulkCalls   int
	existsCalls int
}

var _ storage.VectorStore = (*MockVectorStore)(nil)

// NewMockVectorStore creates an empty in-memory store.
// Note: Returns concrete type to allow test assertions.
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		docs: make(map[string]core.IndexedDocument),
	}
}

// EnsureCollection records the requested dimension.
func (m *MockVectorStore) EnsureCollection(ctx context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dimension
	return nil
}

// Exists reports whether a document with the identifier was inserted.
func (m *MockVectorStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	m.existsCalls++
	fn := m.ExistsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[id]
	return ok, nil
}

// BulkInsert stores documents, counting duplicate identifiers as skipped.
func (m *MockVectorStore) BulkInsert(ctx context.Context, docs []core.IndexedDocument) (storage.BulkResult, error) {
	m.mu.Lock()
	m.bulkCalls++
	fn := m.BulkInsertFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, docs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var res storage.BulkResult
	for _, doc := range docs {
		if _, ok := m.docs[doc.ID]; ok {
			res.Skipped++
			continue
		}
		m.docs[doc.ID] = doc
		res.Inserted++
	}
	return res, nil
}

// FindSimilar ranks stored documents by cosine similarity.
func (m *MockVectorStore) FindSimilar(ctx context.Context, vector []float32, limit int, opts *storage.SearchOptions) ([]storage.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []storage.Match
	for id := range m.docs {
		doc := m.docs[id]
		if opts != nil {
			if opts.Year != 0 && doc.Year != opts.Year {
				continue
			}
			if doc.Rating < opts.MinRating {
				continue
			}
		}
		matches = append(matches, storage.Match{
			Document: &doc,
			Score:    cosineSimilarity(vector, doc.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Close is a no-op.
func (m *MockVectorStore) Close(ctx context.Context) error {
	return nil
}

// Len returns the number of stored documents.
func (m *MockVectorStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// Get returns a stored document by identifier.
func (m *MockVectorStore) Get(id string) (core.IndexedDocument, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	return doc, ok
}

// Seed inserts documents directly, bypassing counters. Used to model
// documents left over from a previous run.
func (m *MockVectorStore) Seed(docs ...core.IndexedDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
}

// Dimension returns the dimension recorded by EnsureCollection.
func (m *MockVectorStore) Dimension() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimension
}

// BulkCalls returns the number of BulkInsert invocations.
func (m *MockVectorStore) BulkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bulkCalls
}

// ExistsCalls returns the number of Exists invocations.
func (m *MockVectorStore) ExistsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existsCalls
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
