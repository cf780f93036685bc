// Package snapshot persists whole collections as JSON documents under named
// keys. A missing key means an empty collection.
package snapshot

import (
	"context"
	"sync"
)

type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
}

type NoopBackend struct{}

func (NoopBackend) Load(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopBackend) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}

// MapBackend keeps payloads in process memory. Useful for tests that need to
// reopen a store against the same saved state.
type MapBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMapBackend() *MapBackend {
	return &MapBackend{data: make(map[string][]byte)}
}

func (b *MapBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	payload, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true, nil
}

func (b *MapBackend) Save(_ context.Context, key string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	b.data[key] = stored
	return nil
}
