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


// Package storage provides the storage abstraction layer for cinedex.
//
// Two concerns live behind interfaces here:
//
//   - VectorStore: the external document store holding IndexedDocuments
//     with similarity search. Implemented by storage/mongo for production
//     and storage/mock for tests.
//   - CheckpointRepository: durable ingestion progress. Implemented by
//     storage/badger; the read-once-at-start, write-after-each-committed-
//     page contract holds regardless of backing medium.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction and
// keep backends swappable:
//
//	repo, err := badger.NewCheckpointRepository(path)  // storage.CheckpointRepository
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
//
// # Thread Safety
//
// All implementations must be thread-safe: the in-flight page fans items
// out across a worker pool, and several pipelines share one store client.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout support.
package storage
