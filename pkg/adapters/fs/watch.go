package fs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/sion-neko/AI-DB/pkg/core"
)

const watchDebounce = 50 * time.Millisecond

// Watch reports changes to key files in the data directory, including writes
// made by other processes. Keys are matched against pattern with doublestar
// syntax ("" matches every key). Events carry core.EntityStore and the key as
// ID. The channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %s", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	out := make(chan core.Event)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatcherActive(false)
		defer watcher.Close()

		// In-flight deliveries must finish before out is closed; cancelling
		// loopCtx first unblocks any delivery nobody is reading.
		d := newDebouncer(watchDebounce)
		defer d.stopAndWait()
		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		return s.watchLoop(loopCtx, watcher, pattern, d, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportWatchError(fmt.Errorf("watcher panic: %w", err))
	}))

	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, d *debouncer, out chan<- core.Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if s.config.Logger != nil && s.config.Logger.Enabled(ctx, slog.LevelDebug) {
				s.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := s.mapEvent(event, pattern)
			if !ok {
				continue
			}
			d.add(e, func(e core.Event) {
				select {
				case out <- e:
				case <-ctx.Done():
				}
			})

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.reportWatchError(wErr)
		}
	}
}

// mapEvent filters an fsnotify event down to a key change. Renames are
// dropped: an atomic write shows up as a Rename of the temp file plus a
// Create of the target.
func (s *Store) mapEvent(event fsnotify.Event, pattern string) (core.Event, bool) {
	key, ok := s.keyFromPath(event.Name)
	if !ok {
		return core.Event{}, false
	}
	if match, err := doublestar.Match(pattern, key); err != nil || !match {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("store change detected", "key", key, "op", event.Op.String())
	}
	return core.Event{
		Type:      t,
		Entity:    core.EntityStore,
		ID:        key,
		Timestamp: time.Now().UnixMilli(),
	}, true
}

func (s *Store) reportWatchError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	if s.config.Logger != nil {
		s.config.Logger.Error("fsnotify error", "error", err)
	}
}

// debouncer coalesces bursts of events per key into one delivery.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]core.Event),
	}
}

// add schedules fire for e.ID after the delay. Events arriving for the same
// key meanwhile replace the pending one, except that a pending CREATE is not
// downgraded to MODIFY.
func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[e.ID]; ok {
		if !(prev.Type == core.EventCreate && e.Type == core.EventModify) {
			d.pending[e.ID] = e
		}
		return
	}

	d.pending[e.ID] = e
	d.wg.Add(1)
	time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev := d.pending[e.ID]
		delete(d.pending, e.ID)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			fire(ev)
		}
	})
}

// stopAndWait drops pending events and waits for running deliveries to return.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.wg.Wait()
}
