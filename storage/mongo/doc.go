// Package mongo implements the storage.VectorStore interface on a
// MongoDB collection with an Atlas vector search index.
//
// The deterministic document identifier is stored as _id, so the primary
// index enforces idempotent inserts: a re-ingested chunk surfaces as an
// E11000 duplicate, which BulkInsert counts rather than fails.
package mongo
