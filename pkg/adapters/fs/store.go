// Package fs implements core.Store on a local directory: one file per key,
// atomic replacement on write, and a lock file shared by every process
// writing to the same directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sion-neko/AI-DB/pkg/core"
)

const (
	// DefaultExtension is appended to keys to build file names.
	DefaultExtension = ".json"
	// DefaultLockName is the lock file created inside the data directory while writing.
	DefaultLockName = ".aidb.lock"
	// DefaultStaleLockAfter is how old a lock file may get before it is considered abandoned.
	DefaultStaleLockAfter = 30 * time.Second
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path           string
	MustExist      bool
	ReadOnly       bool
	Extension      string // e.g. ".json" or ".yaml"
	LockName       string
	StaleLockAfter time.Duration
	Logger         *slog.Logger
	ErrorHandler   func(error) // receives watcher errors; falls back to Logger
}

// Store implements core.Store using the filesystem.
type Store struct {
	Path   string
	config Config

	mu            sync.RWMutex
	writes        int
	lastWrite     *time.Time
	watcherActive bool
}

// NewStore creates a new filesystem-backed store. No I/O happens until Initialize.
func NewStore(config Config) *Store {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.LockName == "" {
		config.LockName = DefaultLockName
	}
	if config.StaleLockAfter <= 0 {
		config.StaleLockAfter = DefaultStaleLockAfter
	}
	return &Store{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the data directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Get reads the file holding key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Set atomically replaces the file holding key while holding the directory lock.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if s.config.Logger != nil {
		s.config.Logger.Debug("writing value to disk", "key", key, "path", path, "bytes", len(value))
	}

	if err := writeFileAtomic(path, value, 0600); err != nil {
		return err
	}

	s.mu.Lock()
	now := time.Now()
	s.writes++
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// keyPath maps a key to its file, rejecting keys that would escape the data directory.
func (s *Store) keyPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("invalid key (empty)")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	if strings.HasPrefix(key, TempFilePrefix) || key+s.config.Extension == s.config.LockName {
		return "", fmt.Errorf("reserved key %q", key)
	}
	return filepath.Join(s.Path, key+s.config.Extension), nil
}

// keyFromPath is the inverse of keyPath. ok is false for files that do not hold a key.
func (s *Store) keyFromPath(path string) (key string, ok bool) {
	if filepath.Dir(path) != filepath.Clean(s.Path) {
		return "", false
	}
	name := filepath.Base(path)
	if name == s.config.LockName || strings.HasPrefix(name, TempFilePrefix) {
		return "", false
	}
	if !strings.HasSuffix(name, s.config.Extension) {
		return "", false
	}
	key = strings.TrimSuffix(name, s.config.Extension)
	return key, key != ""
}

var _ core.Store = (*Store)(nil)
var _ core.Initializer = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
