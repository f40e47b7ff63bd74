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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/reelworthy/cinedex/core"
	"github.com/reelworthy/cinedex/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository opens a checkpoint repository at the given path.
//
// Returns storage.CheckpointRepository interface to enforce abstraction.
func NewCheckpointRepository(filePath string) (storage.CheckpointRepository, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return &CheckpointRepository{backend: backend}, nil
}

// newCheckpointRepository wraps an existing backend. Used by the in-memory
// test constructor.
func newCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{backend: backend}
}

// Save persists the ingestion checkpoint, overwriting any previous record.
func (r *CheckpointRepository) Save(ctx context.Context, checkpoint *core.Checkpoint) error {
	checkpoint.UpdatedAt = time.Now().UTC()

	value, err := storage.MarshalCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Load retrieves the ingestion checkpoint.
// Returns nil, nil if no checkpoint exists.
func (r *CheckpointRepository) Load(ctx context.Context) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)

	return checkpoint, err
}

// Reset deletes the checkpoint so the next run starts fresh.
func (r *CheckpointRepository) Reset(ctx context.Context) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey()); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close closes the underlying database.
func (r *CheckpointRepository) Close() error {
	return r.backend.Close()
}
