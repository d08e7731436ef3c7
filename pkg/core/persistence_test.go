package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sion-neko/AI-DB/pkg/adapters/memory"
	"github.com/sion-neko/AI-DB/pkg/core"
)

// brokenStore fails every call.
type brokenStore struct {
	err    error
	closed bool
}

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, b.err }
func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	return b.err
}
func (b *brokenStore) Close() error {
	b.closed = true
	return nil
}

func sampleData() core.AppData {
	return core.AppData{
		Folders: []core.Folder{
			{ID: "f1", Name: "Work", CreatedAt: 1700000000000},
			{ID: "f2", Name: "日本語", CreatedAt: 1700000000500},
		},
		Conversations: []core.Conversation{
			{ID: "c1", FolderID: "f1", Question: "What is Rust?", Answer: "A systems language\n\n```rust\nfn main() {}\n```", CreatedAt: 1700000001000, UpdatedAt: 1700000002000},
		},
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	for _, codec := range []core.Codec{core.JSONCodec{}, core.YAMLCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			p := core.NewPersistence(memory.NewStore(), core.WithCodec(codec))

			want := sampleData()
			require.NoError(t, p.Save(ctx, want))

			got := p.Load(ctx)
			assert.Equal(t, want, got)
		})
	}
}

func TestPersistence_LoadDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Key", func(t *testing.T) {
		p := core.NewPersistence(memory.NewStore())
		got := p.Load(ctx)
		assert.Equal(t, core.DefaultAppData(), got)
		assert.NotNil(t, got.Folders)
		assert.NotNil(t, got.Conversations)
	})

	t.Run("Read Error", func(t *testing.T) {
		p := core.NewPersistence(&brokenStore{err: errors.New("disk on fire")})
		assert.Equal(t, core.DefaultAppData(), p.Load(ctx))
	})

	corrupt := map[string]string{
		"Malformed JSON": `{"folders": [`,
		"Wrong Shape":    `{"folders": 5, "conversations": "nope"}`,
		"Not An Object":  `[1, 2, 3]`,
	}
	for name, raw := range corrupt {
		t.Run(name, func(t *testing.T) {
			store := memory.NewStore()
			require.NoError(t, store.Set(ctx, core.DefaultKey, []byte(raw)))
			p := core.NewPersistence(store)
			assert.Equal(t, core.DefaultAppData(), p.Load(ctx))
		})
	}

	t.Run("JSON null", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.Set(ctx, core.DefaultKey, []byte("null")))
		got := core.NewPersistence(store).Load(ctx)
		assert.Equal(t, core.DefaultAppData(), got)
	})

	t.Run("Empty YAML", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.Set(ctx, core.DefaultKey, []byte("\n")))
		got := core.NewPersistence(store, core.WithCodec(core.YAMLCodec{})).Load(ctx)
		assert.Equal(t, core.DefaultAppData(), got)
	})
}

func TestPersistence_Layout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := core.NewPersistence(store)

	require.NoError(t, p.Save(ctx, core.AppData{}))
	raw, err := store.Get(ctx, core.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"folders":[],"conversations":[]}`, string(raw))

	require.NoError(t, p.Save(ctx, sampleData()))
	raw, err = store.Get(ctx, core.DefaultKey)
	require.NoError(t, err)

	var generic map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic["conversations"], 1)

	conv := generic["conversations"][0]
	for _, field := range []string{"id", "folderId", "question", "answer", "createdAt", "updatedAt"} {
		assert.Contains(t, conv, field)
	}
	for _, field := range []string{"id", "name", "createdAt"} {
		assert.Contains(t, generic["folders"][0], field)
	}
}

func TestPersistence_CustomKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := core.NewPersistence(store, core.WithKey("other"))
	require.Equal(t, "other", p.Key())

	require.NoError(t, p.Save(ctx, sampleData()))
	_, err := store.Get(ctx, core.DefaultKey)
	require.ErrorIs(t, err, core.ErrKeyNotFound)
	_, err = store.Get(ctx, "other")
	require.NoError(t, err)
}

func TestPersistence_SaveError(t *testing.T) {
	boom := errors.New("quota exceeded")
	store := &brokenStore{err: boom}
	p := core.NewPersistence(store)

	err := p.Save(context.Background(), sampleData())
	require.ErrorIs(t, err, boom)

	require.NoError(t, p.Close())
	assert.True(t, store.closed)
}

func TestCodecByName(t *testing.T) {
	c, err := core.CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = core.CodecByName("YML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Name())

	_, err = core.CodecByName("toml")
	require.Error(t, err)
}
