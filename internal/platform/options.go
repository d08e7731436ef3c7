package platform

import (
	"log/slog"

	"github.com/sion-neko/AI-DB/pkg/core"
)

// options holds the internal configuration for an aidb instance.
type options struct {
	store   core.Store
	logger  *slog.Logger
	adapter string
	config  map[string]interface{}
}

// Option defines a functional option for configuring aidb.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		store:   nil,
		logger:  nil,
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithStore injects a ready-made store. Adapter selection and path
// resolution are skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger shared by the store, persistence and manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFormat selects the dataset encoding: "json" (default) or "yaml".
// The fs adapter also uses it as the file extension.
func WithFormat(format string) Option {
	return func(o *options) {
		o.config["format"] = format
	}
}

// WithKey overrides the storage key holding the dataset.
func WithKey(key string) Option {
	return func(o *options) {
		o.config["key"] = key
	}
}

// WithIDScheme selects the identifier generator: "uuid" (default) or "snowflake".
func WithIDScheme(scheme string) Option {
	return func(o *options) {
		o.config["id_scheme"] = scheme
	}
}

// WithSnowflakeNode sets the node number (0-1023) used by the snowflake scheme.
func WithSnowflakeNode(node int64) Option {
	return func(o *options) {
		o.config["snowflake_node"] = node
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Store writes return core.ErrReadOnly, so mutations stay in memory only.
// 2. The data directory is not created.
// 3. Dev Safety (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), data paths outside the system temp dir are redirected
// into a temporary directory to protect the real dataset.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithEventBuffer sets the per-subscriber event buffer size. Zero means default (64).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithWatcherErrorHandler registers a callback for errors raised while
// watching the data directory. Without it they are only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}
