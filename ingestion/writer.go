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
	"sync"

	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/ratelimit"
	"github.com/reelworthy/cinedex/storage"
)

// BatchWriter buffers documents and writes them to the vector store in
// bulk. A full buffer flushes automatically; callers flush explicitly at
// page boundaries so the checkpoint never runs ahead of persisted data.
// Safe for concurrent use.
type BatchWriter struct {
	store storage.VectorStore
	exec  *ratelimit.Executor
	size  int

	mu       sync.Mutex
	buf      []core.IndexedDocument
	inserted int
	skipped  int
}

// NewBatchWriter creates a writer that flushes every size documents.
func NewBatchWriter(store storage.VectorStore, exec *ratelimit.Executor, size int) *BatchWriter {
	return &BatchWriter{
		store: store,
		exec:  exec,
		size:  size,
		buf:   make([]core.IndexedDocument, 0, size),
	}
}

// Add buffers documents, flushing once the buffer reaches the batch size.
func (w *BatchWriter) Add(ctx context.Context, docs ...core.IndexedDocument) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, docs...)
	if len(w.buf) >= w.size {
		return w.flushLocked(ctx)
	}
	return nil
}

// Flush writes all buffered documents to the store.
func (w *BatchWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

// Counts returns the running totals of documents the store accepted and
// rejected as duplicates.
func (w *BatchWriter) Counts() (inserted, skipped int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inserted, w.skipped
}

// flushLocked writes the buffer. Must be called with the lock held.
func (w *BatchWriter) flushLocked(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}

	batch := w.buf
	var result storage.BulkResult
	err := w.exec.Execute(ctx, func() error {
		var insertErr error
		result, insertErr = w.store.BulkInsert(ctx, batch)
		return insertErr
	})
	if err != nil {
		return fmt.Errorf("bulk insert of %d documents: %w", len(batch), err)
	}

	w.inserted += result.Inserted
	w.skipped += result.Skipped
	w.buf = w.buf[:0]
	return nil
}
