package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DefaultKey is the fixed storage key holding the whole dataset.
const DefaultKey = "ai_conversation_saver_data"

// Persistence stores the entire AppData as one value under a fixed key.
type Persistence struct {
	store  Store
	codec  Codec
	key    string
	logger *slog.Logger
}

// PersistenceOption configures a Persistence.
type PersistenceOption func(*Persistence)

// WithKey overrides the storage key.
func WithKey(key string) PersistenceOption {
	return func(p *Persistence) {
		if key != "" {
			p.key = key
		}
	}
}

// WithCodec sets the codec used to encode the dataset.
func WithCodec(c Codec) PersistenceOption {
	return func(p *Persistence) {
		if c != nil {
			p.codec = c
		}
	}
}

// WithPersistenceLogger sets the logger used to report load and save failures.
func WithPersistenceLogger(logger *slog.Logger) PersistenceOption {
	return func(p *Persistence) {
		p.logger = logger
	}
}

// NewPersistence wraps store. The default codec is JSON and the default key is DefaultKey.
func NewPersistence(store Store, opts ...PersistenceOption) *Persistence {
	p := &Persistence{
		store: store,
		codec: JSONCodec{},
		key:   DefaultKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the storage key.
func (p *Persistence) Key() string { return p.key }

// Store returns the wrapped store.
func (p *Persistence) Store() Store { return p.store }

// Load reads the dataset. A missing key, a read error or undecodable content
// all yield DefaultAppData; failures are logged, never returned.
func (p *Persistence) Load(ctx context.Context) AppData {
	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, ErrKeyNotFound) {
		if p.logger != nil {
			p.logger.Debug("no stored data, starting fresh", "key", p.key)
		}
		return DefaultAppData()
	}
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to load data", "key", p.key, "error", err)
		}
		return DefaultAppData()
	}

	var data AppData
	if err := p.codec.Unmarshal(raw, &data); err != nil {
		if p.logger != nil {
			p.logger.Error("failed to decode data", "key", p.key, "codec", p.codec.Name(), "error", err)
		}
		return DefaultAppData()
	}
	data.normalize()
	return data
}

// Save encodes data and replaces the stored value in full.
// The error is logged and returned; nothing is retried.
func (p *Persistence) Save(ctx context.Context, data AppData) error {
	data.normalize()
	raw, err := p.codec.Marshal(data)
	if err != nil {
		err = fmt.Errorf("failed to encode data: %w", err)
	} else if setErr := p.store.Set(ctx, p.key, raw); setErr != nil {
		err = fmt.Errorf("failed to write %s: %w", p.key, setErr)
	}

	if err != nil && p.logger != nil {
		p.logger.Error("failed to save data", "key", p.key, "error", err)
	}
	return err
}

// Close releases the store if it holds resources.
func (p *Persistence) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
