package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sion-neko/AI-DB/pkg/core"
)

func setupStore(t *testing.T, config Config) *Store {
	t.Helper()
	if config.Path == "" {
		config.Path = t.TempDir()
	}
	s := NewStore(config)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, Config{})

	if _, err := s.Get(ctx, "data"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set(ctx, "data", []byte(`{"folders":[]}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	expectedPath := filepath.Join(s.Path, "data.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("File was not created at %s", expectedPath)
	}

	got, err := s.Get(ctx, "data")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"folders":[]}` {
		t.Errorf("Unexpected value %q", string(got))
	}

	// Lock must be released after the write.
	if _, err := os.Stat(filepath.Join(s.Path, DefaultLockName)); !os.IsNotExist(err) {
		t.Error("lock file still present after Set")
	}
}

func TestStore_Extension(t *testing.T) {
	s := setupStore(t, Config{Extension: "yaml"})
	if err := s.Set(context.Background(), "data", []byte("folders: []\n")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Path, "data.yaml")); err != nil {
		t.Errorf("Expected data.yaml: %v", err)
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, Config{})

	for _, key := range []string{"", "..", "../escape", "nested/key", `win\key`, TempFilePrefix + "x"} {
		if err := s.Set(ctx, key, []byte("v")); err == nil {
			t.Errorf("Expected Set(%q) to fail", key)
		}
		if _, err := s.Get(ctx, key); err == nil || errors.Is(err, core.ErrKeyNotFound) {
			t.Errorf("Expected Get(%q) to fail with a validation error, got %v", key, err)
		}
	}
}

func TestStore_Initialize(t *testing.T) {
	t.Run("Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data")
		s := NewStore(Config{Path: path})
		if err := s.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			t.Errorf("data directory not created")
		}
	})

	t.Run("MustExist Fails if Directory Missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		s := NewStore(Config{Path: path, MustExist: true})
		if err := s.Initialize(context.Background()); err == nil {
			t.Error("Expected failure for missing directory with MustExist")
		}
	})

	t.Run("Rejects File Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		s := NewStore(Config{Path: path, MustExist: true})
		if err := s.Initialize(context.Background()); err == nil {
			t.Error("Expected failure when data path is a file")
		}
	})
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writer := setupStore(t, Config{Path: dir})
	if err := writer.Set(ctx, "data", []byte("v1")); err != nil {
		t.Fatal(err)
	}

	reader := setupStore(t, Config{Path: dir, ReadOnly: true})
	got, err := reader.Get(ctx, "data")
	if err != nil || string(got) != "v1" {
		t.Fatalf("read-only Get = %q, %v", got, err)
	}
	if err := reader.Set(ctx, "data", []byte("v2")); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly, got %v", err)
	}
}

func TestStore_Lock(t *testing.T) {
	t.Run("Waits for Held Lock", func(t *testing.T) {
		s := setupStore(t, Config{})
		unlock, err := s.lock(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err = s.Set(ctx, "data", []byte("v"))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline while lock is held, got %v", err)
		}
	})

	t.Run("Removes Stale Lock", func(t *testing.T) {
		s := setupStore(t, Config{StaleLockAfter: time.Second})
		lockPath := filepath.Join(s.Path, DefaultLockName)
		if err := os.WriteFile(lockPath, []byte("12345\n"), 0600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Minute)
		if err := os.Chtimes(lockPath, old, old); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Set(ctx, "data", []byte("v")); err != nil {
			t.Fatalf("Set should take over a stale lock: %v", err)
		}
	})
}

func TestStore_State(t *testing.T) {
	s := setupStore(t, Config{})
	if err := s.Set(context.Background(), "data", []byte("v")); err != nil {
		t.Fatal(err)
	}

	st, ok := s.State().(StoreState)
	if !ok {
		t.Fatalf("unexpected state type %T", s.State())
	}
	if st.Writes != 1 || st.LastWrite == nil {
		t.Errorf("Expected one recorded write, got %+v", st)
	}
	if st.Extension != DefaultExtension {
		t.Errorf("Expected extension %s, got %s", DefaultExtension, st.Extension)
	}
	if s.ComponentType() != "fs" {
		t.Errorf("unexpected component type %s", s.ComponentType())
	}
}

func TestStore_WithPersistence(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, Config{})
	p := core.NewPersistence(s)

	want := core.AppData{
		Folders:       []core.Folder{{ID: "f1", Name: "Work", CreatedAt: 1}},
		Conversations: []core.Conversation{{ID: "c1", FolderID: "f1", Question: "Q1", Answer: "A1", CreatedAt: 2, UpdatedAt: 3}},
	}
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A second store over the same directory sees the same dataset.
	other := setupStore(t, Config{Path: s.Path})
	got := core.NewPersistence(other).Load(ctx)
	if len(got.Folders) != 1 || got.Folders[0] != want.Folders[0] {
		t.Errorf("folders mismatch: %+v", got.Folders)
	}
	if len(got.Conversations) != 1 || got.Conversations[0] != want.Conversations[0] {
		t.Errorf("conversations mismatch: %+v", got.Conversations)
	}

	if err := os.WriteFile(filepath.Join(s.Path, core.DefaultKey+".json"), []byte("{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := core.NewPersistence(other).Load(ctx); len(got.Folders) != 0 || got.Folders == nil {
		t.Errorf("corrupt file must load as the empty default, got %+v", got)
	}
}
