package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// CatalogItem is a single record from the external film catalog.
// Items are ephemeral: they are re-fetched on every run and discarded
// once their chunks have been turned into IndexedDocuments.
type CatalogItem struct {
	ID          int64
	Title       string
	Synopsis    string
	ReleaseDate string // YYYY-MM-DD as the catalog reports it
	Rating      float64
	Year        int // partition key (release year)
	SourceURL   string
}

// EnrichmentRecord carries the distribution-channel names for a catalog item.
// It is best-effort: a zero-value record is used when the enrichment
// lookup fails.
type EnrichmentRecord struct {
	ItemID    int64
	Providers []string
}

// TextChunk is one overlapping fragment of a composed item document.
type TextChunk struct {
	Index  int
	Text   string
	ItemID int64
}

// IndexedDocument is the durable unit persisted to the vector store.
// It is write-once: re-ingesting the same item chunk produces the same
// identifier, which the store rejects as a duplicate.
type IndexedDocument struct {
	ID          string
	Vector      []float32
	Text        string
	Title       string
	Rating      float64
	ReleaseDate string
	Year        int
	Providers   []string
	SourceURL   string
	ChunkIndex  int
}

// DocumentID generates the deterministic identifier for one chunk of a
// catalog item using BLAKE2b hashing. Identical (title, release date,
// chunk index) always produce the identical identifier, which is what
// makes store-side inserts idempotent. The identifier doubles as the
// dedup key.
func DocumentID(title, releaseDate string, chunkIndex int) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(title))
	h.Write([]byte{'|'})
	h.Write([]byte(releaseDate))
	h.Write([]byte{'|'})
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(chunkIndex))
	h.Write(idx[:])
	return hex.EncodeToString(h.Sum(nil))
}

// Checkpoint records durable ingestion progress. It is read once at
// startup and overwritten after every committed page, so a restarted run
// resumes at the first incomplete page of the first incomplete partition.
type Checkpoint struct {
	CurrentPartition    int         `json:"current_partition"`
	CompletedPartitions []int       `json:"completed_partitions"`
	LastCompletedPage   map[int]int `json:"last_completed_page"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewCheckpoint returns an empty checkpoint for a fresh run.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		LastCompletedPage: make(map[int]int),
	}
}

// IsCompleted reports whether a partition has been fully ingested.
func (c *Checkpoint) IsCompleted(partition int) bool {
	for _, p := range c.CompletedPartitions {
		if p == partition {
			return true
		}
	}
	return false
}

// MarkCompleted records a partition as fully ingested and clears its
// page cursor.
func (c *Checkpoint) MarkCompleted(partition int) {
	if c.IsCompleted(partition) {
		return
	}
	c.CompletedPartitions = append(c.CompletedPartitions, partition)
	delete(c.LastCompletedPage, partition)
}

// MarkPageDone records that a page of a partition has been durably written.
func (c *Checkpoint) MarkPageDone(partition, page int) {
	if c.LastCompletedPage == nil {
		c.LastCompletedPage = make(map[int]int)
	}
	if page > c.LastCompletedPage[partition] {
		c.LastCompletedPage[partition] = page
	}
}

// NextPage returns the first page of a partition that still needs work.
// Pages are 1-based, so a partition with no progress starts at page 1.
func (c *Checkpoint) NextPage(partition int) int {
	return c.LastCompletedPage[partition] + 1
}
