package ports

import "context"

// Record is the raw field map of one remote document, keyed by wire field
// name. Values are whatever the store's codec produced (strings, numbers,
// booleans, nested Records).
type Record = map[string]any

// RemoteStore is the abstract document-oriented remote data service. Paths
// are hierarchical, slash-separated strings rooted at a collection, e.g.
// "Tasks/{id}" or "Users/{id}/tasks".
type RemoteStore interface {
	// ReadOnce performs a single-shot read of the record at path. A path
	// with no backing record yields (nil, nil); only transport failures
	// return an error.
	ReadOnce(ctx context.Context, path string) (Record, error)

	// Write upserts the named fields at path. It returns only after the
	// store has acknowledged the write.
	Write(ctx context.Context, path string, fields Record) error

	// Delete removes the record (or nested field) at path.
	Delete(ctx context.Context, path string) error

	// GenerateKey produces a globally unique id scoped to a collection.
	GenerateKey(ctx context.Context, collection string) (string, error)
}
