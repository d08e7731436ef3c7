// Package sqlite implements core.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/sion-neko/AI-DB/pkg/core"
)

// DefaultFileName is the database file created inside a data directory.
const DefaultFileName = "aidb.db"

// Config holds the configuration for the SQLite store.
type Config struct {
	Path     string // database file, or a "file:" DSN
	ReadOnly bool
	Logger   *slog.Logger
}

// Store implements core.Store with a key/value table.
type Store struct {
	config Config

	mu        sync.RWMutex
	conn      *sql.DB
	hasSchema bool
	writes    int
	lastWrite *time.Time
}

// NewStore creates a SQLite-backed store. The database is opened by Initialize.
func NewStore(config Config) *Store {
	return &Store{config: config}
}

// Initialize opens the database, enables WAL mode and creates the schema.
// A read-only store opens the file with mode=ro and leaves it untouched: no
// journal change, no schema. Get reports ErrKeyNotFound until a writer has
// created the table.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	conn, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if s.config.ReadOnly {
		s.hasSchema, err = tableExists(ctx, conn, "kv")
		if err != nil {
			conn.Close()
			return fmt.Errorf("open db read-only: %w", err)
		}
	} else {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			conn.Close()
			return fmt.Errorf("set wal mode: %w", err)
		}
		if err := migrate(ctx, conn); err != nil {
			conn.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		s.hasSchema = true
	}
	s.conn = conn

	if s.config.Logger != nil {
		s.config.Logger.Debug("sqlite store opened", "path", s.config.Path, "read_only", s.config.ReadOnly)
	}
	return nil
}

// dsn returns the data source name, switched to a read-only URI when needed.
func (s *Store) dsn() string {
	path := s.config.Path
	if !s.config.ReadOnly {
		return path
	}
	if !strings.HasPrefix(path, "file:") {
		return "file:" + filepath.ToSlash(path) + "?mode=ro"
	}
	if strings.Contains(path, "?") {
		return path + "&mode=ro"
	}
	return path + "?mode=ro"
}

func tableExists(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	var n int
	err := conn.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	return n > 0, err
}

func migrate(ctx context.Context, conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := conn.ExecContext(ctx, schema)
	return err
}

func (s *Store) db() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil, fmt.Errorf("sqlite store not initialized: %s", s.config.Path)
	}
	if !s.hasSchema {
		return nil, core.ErrKeyNotFound
	}
	return s.conn, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.db()
	if err != nil {
		return nil, err
	}

	var value []byte
	err = conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	conn, err := s.db()
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = conn.ExecContext(ctx,
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.mu.Lock()
	s.writes++
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path      string     `json:"path"`
	Open      bool       `json:"open"`
	ReadOnly  bool       `json:"read_only"`
	Writes    int        `json:"writes"`
	LastWrite *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Path:      s.config.Path,
		Open:      s.conn != nil,
		ReadOnly:  s.config.ReadOnly,
		Writes:    s.writes,
		LastWrite: s.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite"
}

var _ core.Store = (*Store)(nil)
var _ core.Initializer = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
