package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sion-neko/AI-DB/pkg/adapters/lifecycle"
	"github.com/sion-neko/AI-DB/pkg/adapters/memory"
	"github.com/sion-neko/AI-DB/pkg/core"
)

func TestSource_ForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 2)
	in <- core.Event{Type: core.EventCreate, Entity: core.EntityFolder, ID: "f1"}
	in <- core.Event{Type: core.EventDelete, Entity: core.EntityConversation, ID: "c1"}
	close(in)

	src := lifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{
		core.Event{Type: core.EventCreate, Entity: core.EntityFolder, ID: "f1"}.String(),
		core.Event{Type: core.EventDelete, Entity: core.EntityConversation, ID: "c1"}.String(),
	}, got)
}

func TestSource_EntityFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, Entity: core.EntityFolder, ID: "f1"}
	in <- core.Event{Type: core.EventCreate, Entity: core.EntityConversation, ID: "c1"}
	in <- core.Event{Type: core.EventModify, Entity: core.EntityStore, ID: "data"}
	close(in)

	src := lifecycle.NewSource(in, lifecycle.WithEntities(core.EntityConversation))
	require.NoError(t, src.Start(ctx))

	var ids []string
	for e := range src.Events() {
		ids = append(ids, e.(core.Event).ID)
	}
	assert.Equal(t, []string{"c1"}, ids)
}

func TestSource_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := lifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("source did not close after cancel")
	}
}

func TestSource_FromManager(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := core.NewManager(core.NewPersistence(memory.NewStore()))
	m.Start(ctx)
	defer m.Close()
	require.NoError(t, m.WaitReady(ctx))

	src := lifecycle.NewSource(m.Subscribe(ctx))
	require.NoError(t, src.Start(ctx))

	f, err := m.AddFolder(ctx, "Work")
	require.NoError(t, err)

	select {
	case e := <-src.Events():
		ev := e.(core.Event)
		assert.Equal(t, core.EventCreate, ev.Type)
		assert.Equal(t, f.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for manager event")
	}
}
