// Package chunk provides deterministic fixed-size text chunking with overlap.
package chunk

import (
	"github.com/reelworthy/cinedex/core"
)

// DefaultSize is the default number of bytes per chunk.
const DefaultSize = 512

// DefaultOverlap is the default number of overlapping bytes between
// consecutive chunks.
const DefaultOverlap = 100

// Chunker splits composed document text into fixed-size overlapping
// fragments. Splitting is a pure function of the input text and the
// chunker configuration: identical input always yields the identical
// chunk sequence. This matters because the chunk index feeds the
// deterministic document identifier.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the chunk size in bytes.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave a positive stride
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}

	return c
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured chunk overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split breaks text into ordered overlapping chunks for the given item.
// Empty text produces no chunks.
func (c *Chunker) Split(itemID int64, text string) []core.TextChunk {
	if text == "" {
		return nil
	}

	stride := c.size - c.overlap
	chunks := make([]core.TextChunk, 0, len(text)/stride+1)

	for start := 0; start < len(text); start += stride {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, core.TextChunk{
			Index:  len(chunks),
			Text:   text[start:end],
			ItemID: itemID,
		})
	}

	return chunks
}
