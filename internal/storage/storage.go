// Package storage remembers which feed items were already announced downstream.
// It never holds feed documents.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks announced item keys.
type Store interface {
	Close() error
	// Claim atomically marks key as announced and reports whether this call
	// was the one that did it. Claimed keys expire after the item TTL.
	Claim(key string) (bool, error)
	// Release forgets key so a later Claim succeeds again.
	Release(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ItemTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultItemTTL         = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = defaultItemTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore remembers nothing, so every claim succeeds.
type noopStore struct{}

func (noopStore) Close() error               { return nil }
func (noopStore) Claim(string) (bool, error) { return true, nil }
func (noopStore) Release(string) error       { return nil }
