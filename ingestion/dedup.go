package ingestion

import (
	"context"
	"sync"

	"github.com/reelworthy/cinedex/ratelimit"
	"github.com/reelworthy/cinedex/storage"
)

// Ledger tracks which document identifiers have already been produced.
// It answers from an in-run set first and falls back to the store for
// documents persisted by earlier runs, so re-ingested items are skipped
// before they cost an embedding call.
type Ledger struct {
	store storage.VectorStore
	exec  *ratelimit.Executor

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLedger creates a Ledger backed by the given store. Store lookups
// run through exec so they share the store call-class budget.
func NewLedger(store storage.VectorStore, exec *ratelimit.Executor) *Ledger {
	return &Ledger{
		store: store,
		exec:  exec,
		seen:  make(map[string]struct{}),
	}
}

// Seen reports whether the identifier was produced this run or already
// exists in the store.
func (l *Ledger) Seen(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	_, ok := l.seen[id]
	l.mu.Unlock()
	if ok {
		return true, nil
	}

	var exists bool
	err := l.exec.Execute(ctx, func() error {
		var checkErr error
		exists, checkErr = l.store.Exists(ctx, id)
		return checkErr
	})
	if err != nil {
		return false, err
	}
	if exists {
		l.Mark(id)
	}
	return exists, nil
}

// Mark records the identifier as produced this run.
func (l *Ledger) Mark(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = struct{}{}
}
