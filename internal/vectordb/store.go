package vectordb

import "context"

// Store is the persistent vector index shared by the whole corpus. All
// documents live in one similarity space; scoping a query to particular
// documents happens after retrieval, via Record.Source.
//
// Implementations must allow concurrent queries and serialize writes, so
// two ingestions committing at the same time cannot interleave their
// records.
type Store interface {
	// Upsert appends records to the index, creating the underlying
	// storage on first use. Records with an empty ID get one assigned.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to k nearest records to the given vector, in
	// ascending distance order (most similar first).
	Query(ctx context.Context, embedding []float32, k int) ([]Match, error)

	// DeleteBySource removes every record whose source equals the given
	// filename. After it returns, no query may surface those records.
	DeleteBySource(ctx context.Context, source string) error

	// Persist durably flushes the index to disk. Called after every
	// upsert batch so a crash cannot lose committed documents.
	Persist(ctx context.Context) error

	// Load restores the index from disk. A missing snapshot is not an
	// error; the store starts empty.
	Load(ctx context.Context) error

	// Count returns the number of records in the index.
	Count() int
}
