package core

import "context"

// Store defines the contract for the durable key/value storage behind the dataset.
// Values are opaque byte blobs; the core never writes partial values.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (filesystem, SQLite, memory, ...).
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key in full.
	Set(ctx context.Context, key string, value []byte) error
}

// Initializer is implemented by stores that need setup before use
// (e.g. create directories, schema migration).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for stores that can report external changes
// to their keys. Events carry EntityStore and the changed key as ID.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
