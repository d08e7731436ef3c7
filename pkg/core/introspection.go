package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ManagerState exposes internal state for observability.
type ManagerState struct {
	Phase           string     `json:"phase"`
	Folders         int        `json:"folders"`
	Conversations   int        `json:"conversations"`
	Dirty           bool       `json:"dirty"`
	LastPersistedAt *time.Time `json:"last_persisted_at,omitempty"`
	LastSaveError   string     `json:"last_save_error,omitempty"`
	SaveFailures    int        `json:"save_failures"`
	Subscribers     int        `json:"subscribers"`
	EventBufferSize int        `json:"event_buffer_size"`
	StoreType       string     `json:"store_type"`
	Key             string     `json:"key"`
	Codec           string     `json:"codec"`
}

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	s := m.Status()

	st := ManagerState{
		Phase:           string(s.Phase),
		Folders:         s.Folders,
		Conversations:   s.Conversations,
		Dirty:           s.Dirty,
		SaveFailures:    s.SaveFailures,
		Subscribers:     m.subscriberCount(),
		EventBufferSize: m.eventBuffer,
		StoreType:       "unknown",
		Key:             m.persistence.key,
		Codec:           m.persistence.codec.Name(),
	}
	if !s.LastPersistedAt.IsZero() {
		t := s.LastPersistedAt
		st.LastPersistedAt = &t
	}
	if s.LastSaveError != nil {
		st.LastSaveError = s.LastSaveError.Error()
	}
	if m.persistence.store != nil {
		st.StoreType = "store"
		if comp, ok := m.persistence.store.(introspection.Component); ok {
			st.StoreType = comp.ComponentType()
		}
	}
	return st
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)
