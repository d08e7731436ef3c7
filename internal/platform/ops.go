package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sion-neko/AI-DB/pkg/adapters/fs"
	"github.com/sion-neko/AI-DB/pkg/adapters/memory"
	"github.com/sion-neko/AI-DB/pkg/adapters/sqlite"
	"github.com/sion-neko/AI-DB/pkg/core"
)

// Init builds and initializes the store selected by the options.
// The 'uri' argument is adapter-specific: a data directory for 'fs', a data
// directory or database file for 'sqlite', ignored for 'memory'.
func Init(uri string, opts ...Option) (core.Store, error) {
	return initStore(context.Background(), uri, buildOptions(opts))
}

func initStore(ctx context.Context, uri string, o *options) (core.Store, error) {
	// 1. Check for injected store
	if o.store != nil {
		return o.store, nil
	}

	// 2. Build based on Adapter
	var store core.Store
	var err error

	switch o.adapter {
	case "fs", "":
		store, err = initFS(uri, o)
	case "sqlite":
		store, err = initSQLite(uri, o)
	case "memory":
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if initializer, ok := store.(core.Initializer); ok {
		if err := initializer.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// resolvePath applies the dev sandbox to a user supplied path.
func resolvePath(path string, o *options) (string, bool) {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only access is inherently safe.
	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveStorePath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolvedPath)
		}
	}
	if o.logger != nil && useTemp && resolvedPath != filepath.Clean(path) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}
	return resolvedPath, useTemp
}

// initFS builds the filesystem store.
func initFS(path string, o *options) (core.Store, error) {
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	codec, err := codecFor(o)
	if err != nil {
		return nil, err
	}
	resolvedPath, _ := resolvePath(path, o)

	return fs.NewStore(fs.Config{
		Path:         resolvedPath,
		MustExist:    mustExist,
		ReadOnly:     isReadOnly,
		Extension:    "." + codec.Name(),
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	}), nil
}

// initSQLite builds the SQLite store. A uri ending in ".db" or starting with
// "file:" names the database itself; anything else is a data directory that
// receives sqlite.DefaultFileName.
func initSQLite(uri string, o *options) (core.Store, error) {
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)

	dsn := uri
	if !strings.HasPrefix(uri, "file:") {
		dir, file := uri, sqlite.DefaultFileName
		if strings.HasSuffix(uri, ".db") {
			dir, file = filepath.Dir(uri), filepath.Base(uri)
		}
		resolvedDir, _ := resolvePath(dir, o)

		// The directory holding the database follows the fs rules.
		dirStore := fs.NewStore(fs.Config{Path: resolvedDir, MustExist: mustExist, ReadOnly: isReadOnly})
		if err := dirStore.Initialize(context.Background()); err != nil {
			return nil, err
		}
		dsn = filepath.Join(resolvedDir, file)
	}

	return sqlite.NewStore(sqlite.Config{
		Path:     dsn,
		ReadOnly: isReadOnly,
		Logger:   o.logger,
	}), nil
}

func codecFor(o *options) (core.Codec, error) {
	format, _ := o.config["format"].(string)
	return core.CodecByName(format)
}
