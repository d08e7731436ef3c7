package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sion-neko/AI-DB/pkg/adapters/sqlite"
	"github.com/sion-neko/AI-DB/pkg/core"
)

func newStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s := sqlite.NewStore(sqlite.Config{Path: path})
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Key", func(t *testing.T) {
		s := newStore(t, filepath.Join(t.TempDir(), sqlite.DefaultFileName))
		_, err := s.Get(ctx, "data")
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
	})

	t.Run("Set Then Overwrite", func(t *testing.T) {
		s := newStore(t, filepath.Join(t.TempDir(), sqlite.DefaultFileName))

		require.NoError(t, s.Set(ctx, "data", []byte("v1")))
		require.NoError(t, s.Set(ctx, "data", []byte("v2")))

		got, err := s.Get(ctx, "data")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(got))

		st := s.State().(sqlite.StoreState)
		assert.Equal(t, 2, st.Writes)
		assert.True(t, st.Open)
		assert.NotNil(t, st.LastWrite)
		assert.Equal(t, "sqlite", s.ComponentType())
	})

	t.Run("Survives Reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), sqlite.DefaultFileName)
		s := sqlite.NewStore(sqlite.Config{Path: path})
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Set(ctx, "data", []byte(`{"folders":[],"conversations":[]}`)))
		require.NoError(t, s.Close())

		reopened := newStore(t, path)
		got, err := reopened.Get(ctx, "data")
		require.NoError(t, err)
		assert.JSONEq(t, `{"folders":[],"conversations":[]}`, string(got))
	})

	t.Run("Read Only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), sqlite.DefaultFileName)
		newStore(t, path)

		ro := sqlite.NewStore(sqlite.Config{Path: path, ReadOnly: true})
		require.NoError(t, ro.Initialize(ctx))
		defer ro.Close()
		assert.ErrorIs(t, ro.Set(ctx, "data", []byte("v")), core.ErrReadOnly)
	})

	t.Run("Read Only Leaves File Untouched", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "foreign.db")
		raw, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		_, err = raw.ExecContext(ctx, "CREATE TABLE other (x INTEGER)")
		require.NoError(t, err)
		require.NoError(t, raw.Close())

		ro := sqlite.NewStore(sqlite.Config{Path: path, ReadOnly: true})
		require.NoError(t, ro.Initialize(ctx))
		_, err = ro.Get(ctx, "data")
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
		assert.ErrorIs(t, ro.Set(ctx, "data", []byte("v")), core.ErrReadOnly)
		require.NoError(t, ro.Close())

		raw, err = sql.Open("sqlite", path)
		require.NoError(t, err)
		defer raw.Close()
		var tables int
		require.NoError(t, raw.QueryRowContext(ctx,
			"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv'").Scan(&tables))
		assert.Zero(t, tables, "schema must not be created")
		var mode string
		require.NoError(t, raw.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "delete", mode, "journal mode must not change")
	})

	t.Run("Read Only Missing File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.db")
		ro := sqlite.NewStore(sqlite.Config{Path: path, ReadOnly: true})
		assert.Error(t, ro.Initialize(ctx))
		assert.NoFileExists(t, path)
	})

	t.Run("Not Initialized", func(t *testing.T) {
		s := sqlite.NewStore(sqlite.Config{Path: filepath.Join(t.TempDir(), "x.db")})
		_, err := s.Get(ctx, "data")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrKeyNotFound)
		assert.NoError(t, s.Close())
	})
}

func TestStore_ManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), sqlite.DefaultFileName)

	s := sqlite.NewStore(sqlite.Config{Path: path})
	require.NoError(t, s.Initialize(ctx))
	m := core.NewManager(core.NewPersistence(s))
	m.Start(ctx)
	require.NoError(t, m.WaitReady(ctx))

	f, err := m.AddFolder(ctx, "Work")
	require.NoError(t, err)
	_, err = m.AddConversation(ctx, f.ID, "Q1", "A1")
	require.NoError(t, err)
	require.NoError(t, m.Close())

	loaded := core.NewPersistence(newStore(t, path)).Load(ctx)
	require.Len(t, loaded.Folders, 1)
	require.Len(t, loaded.Conversations, 1)
	assert.Equal(t, "Work", loaded.Folders[0].Name)
	assert.Equal(t, f.ID, loaded.Conversations[0].FolderID)
}
