package aidb

import (
	"context"
	"log/slog"

	"github.com/sion-neko/AI-DB/internal/platform"
	"github.com/sion-neko/AI-DB/pkg/core"
)

// --- Types ---

// Manager is the in-memory authority over folders and conversations.
type Manager = core.Manager

// Folder is a user-named container for conversations.
type Folder = core.Folder

// Conversation is one saved question/answer pair.
type Conversation = core.Conversation

// Event describes a change applied to the dataset.
type Event = core.Event

// --- Configuration ---

// Option defines a functional option for configuring aidb.
type Option = platform.Option

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStore injects a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithLogger sets the logger for the store, persistence and manager.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFormat selects the dataset encoding ("json" or "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithKey overrides the storage key holding the dataset.
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithIDScheme selects the identifier generator ("uuid" or "snowflake").
func WithIDScheme(scheme string) Option {
	return platform.WithIDScheme(scheme)
}

// WithSnowflakeNode sets the node number used by the snowflake scheme.
func WithSnowflakeNode(node int64) Option {
	return platform.WithSnowflakeNode(node)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the store read-only.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler registers a callback for data directory watch errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates and starts a Manager over the store found at uri.
func New(ctx context.Context, uri string, opts ...Option) (*core.Manager, error) {
	return platform.New(ctx, uri, opts...)
}

// Init initializes a store explicitly.
func Init(uri string, opts ...Option) (core.Store, error) {
	return platform.Init(uri, opts...)
}

// --- Safety & Utils ---

// FindRoot looks upwards from dir for a directory holding a .aidb data directory.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// ResolveStorePath determines the actual data path based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
