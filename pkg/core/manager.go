package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/sion-neko/AI-DB/pkg/ids"
)

// Phase is the lifecycle state of a Manager.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

const defaultEventBuffer = 64

// Manager is the sole authority over the in-memory folders and conversations.
//
// Mutations are queued and applied by a single worker in arrival order; each
// one ends with exactly one full write through Persistence before the call
// returns. Queries read memory only and are safe from any goroutine.
//
// Lifecycle: NewManager -> Start (async load, PhaseLoading -> PhaseReady) -> Close.
type Manager struct {
	persistence *Persistence
	logger      *slog.Logger
	ids         ids.Generator
	now         func() time.Time
	eventBuffer int

	mu     sync.RWMutex
	data   AppData
	phase  Phase
	status Status

	queue     chan *mutation
	ready     chan struct{}
	stopped   chan struct{}
	closing   chan struct{}
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	started   atomic.Bool
	closed    atomic.Bool

	subMu      sync.Mutex
	subs       map[int]chan Event
	nextSub    int
	subsClosed bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(g ids.Generator) ManagerOption {
	return func(m *Manager) {
		if g != nil {
			m.ids = g
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.eventBuffer = size
		}
	}
}

// Status reports the manager phase and the durability of the in-memory state.
type Status struct {
	Phase         Phase
	Folders       int
	Conversations int

	// Dirty is true while memory holds changes the last write failed to persist.
	Dirty           bool
	LastPersistedAt time.Time
	LastSaveError   error
	// SaveFailures counts consecutive failed writes.
	SaveFailures int
}

type mutation struct {
	name  string
	apply func(data *AppData, now int64) ([]Event, error)
	done  chan error
}

// NewManager creates a Manager over p. Call Start to load the dataset.
func NewManager(p *Persistence, opts ...ManagerOption) *Manager {
	m := &Manager{
		persistence: p,
		ids:         ids.UUID(),
		now:         time.Now,
		eventBuffer: defaultEventBuffer,
		data:        DefaultAppData(),
		phase:       PhaseLoading,
		queue:       make(chan *mutation),
		ready:       make(chan struct{}),
		stopped:     make(chan struct{}),
		closing:     make(chan struct{}),
		subs:        make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the dataset asynchronously and then serves mutations until ctx
// is cancelled or Close is called. Calling Start more than once has no effect.
func (m *Manager) Start(ctx context.Context) {
	if m.closed.Load() {
		return
	}
	m.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		m.cancel = cancel
		m.started.Store(true)

		lifecycle.Go(runCtx, func(ctx context.Context) error {
			defer close(m.stopped)
			m.load(ctx)
			return m.run(ctx)
		}, lifecycle.WithErrorHandler(func(err error) {
			if m.logger != nil {
				m.logger.Error("manager worker failed", "error", err)
			}
		}))
	})
}

// IsLoading reports whether the initial load is still in progress.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseLoading
}

// Ready is closed once the initial load has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until the initial load completes or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	if !m.started.Load() {
		return ErrNotStarted
	}
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after the in-flight mutation, closes subscriber
// channels and releases the store.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		if m.started.Load() {
			m.cancel()
			<-m.stopped
		}
		close(m.closing)
		m.closeSubscribers()
		err = m.persistence.Close()
	})
	return err
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.status
	s.Phase = m.phase
	s.Folders = len(m.data.Folders)
	s.Conversations = len(m.data.Conversations)
	return s
}

func (m *Manager) load(ctx context.Context) {
	data := m.persistence.Load(ctx)
	if dropped := dropOrphans(&data); dropped > 0 && m.logger != nil {
		m.logger.Warn("dropped conversations referencing missing folders", "count", dropped)
	}

	m.mu.Lock()
	m.data = data
	m.phase = PhaseReady
	m.mu.Unlock()
	close(m.ready)

	if m.logger != nil {
		m.logger.Debug("data loaded",
			"folders", len(data.Folders),
			"conversations", len(data.Conversations),
		)
	}
}

// dropOrphans removes conversations whose folder is absent and returns how many were removed.
func dropOrphans(data *AppData) int {
	folders := make(map[string]struct{}, len(data.Folders))
	for _, f := range data.Folders {
		folders[f.ID] = struct{}{}
	}
	kept := data.Conversations[:0:0]
	for _, c := range data.Conversations {
		if _, ok := folders[c.FolderID]; ok {
			kept = append(kept, c)
		}
	}
	dropped := len(data.Conversations) - len(kept)
	if dropped > 0 {
		data.Conversations = kept
	}
	return dropped
}

// run is the mutation loop. The queue is only read once loading has finished,
// so mutations issued during PhaseLoading wait for PhaseReady.
func (m *Manager) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case mu := <-m.queue:
			m.apply(ctx, mu)
		}
	}
}

func (m *Manager) apply(ctx context.Context, mu *mutation) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("mutation %s panicked: %v", mu.name, r)
			if m.logger != nil {
				m.logger.Error("mutation panic", "op", mu.name, "error", err)
			}
			mu.done <- err
		}
	}()

	m.mu.RLock()
	next := m.data.Clone()
	m.mu.RUnlock()

	events, err := mu.apply(&next, m.now().UnixMilli())
	if err != nil {
		mu.done <- err
		return
	}

	m.mu.Lock()
	m.data = next
	m.mu.Unlock()

	// The write runs to completion even if the manager is shutting down.
	saveErr := m.persistence.Save(context.WithoutCancel(ctx), next)
	m.recordSave(mu.name, saveErr)

	m.publish(events)
	mu.done <- nil
}

func (m *Manager) recordSave(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		m.status.Dirty = false
		m.status.LastPersistedAt = m.now()
		m.status.LastSaveError = nil
		m.status.SaveFailures = 0
		return
	}

	m.status.Dirty = true
	m.status.LastSaveError = err
	m.status.SaveFailures++
	if m.logger != nil && m.status.SaveFailures > 1 {
		m.logger.Warn("repeated save failures, changes are only in memory",
			"op", op,
			"failures", m.status.SaveFailures,
		)
	}
}

// submit enqueues mu and waits for it to be applied. ctx only bounds the wait
// for a queue slot; once accepted the mutation always completes.
func (m *Manager) submit(ctx context.Context, mu *mutation) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.started.Load() {
		return ErrNotStarted
	}

	mu.done = make(chan error, 1)
	select {
	case m.queue <- mu:
	case <-m.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-mu.done
}
