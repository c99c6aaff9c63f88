// Package kvstore provides durable key-value backends for per-user client
// state such as favourites.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Retrieve when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a generic durable key-value store.
type Store interface {
	Persist(ctx context.Context, key string, value []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Memory is a process-local Store, used for anonymous or throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Persist(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Retrieve(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Close() error {
	return nil
}

// Open returns the backend named kind ("memory", "badger" or "sqlite") at path.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "memory", "":
		return NewMemory(), nil
	case "badger":
		return OpenBadger(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
