// Package lifecycle exposes aidb change streams as lifecycle sources.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/sion-neko/AI-DB/pkg/core"
)

// SourceOption configures a change source.
type SourceOption func(*changeSource)

// WithEntities restricts the source to events about the given entities
// (core.EntityFolder, core.EntityConversation, core.EntityStore).
func WithEntities(entities ...core.Entity) SourceOption {
	return func(s *changeSource) {
		s.entities = make(map[core.Entity]bool, len(entities))
		for _, e := range entities {
			s.entities[e] = true
		}
	}
}

type changeSource struct {
	events   <-chan core.Event
	entities map[core.Entity]bool
	out      chan lifecycle.Event
}

// NewSource creates a lifecycle.Source fed by a core.Event channel, such as
// the one returned by Manager.Subscribe or fs.Store.Watch.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes, then
// closes Events.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.entities != nil && !s.entities[e.Entity] {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
