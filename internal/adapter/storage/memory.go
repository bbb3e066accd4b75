package storage

import (
	"context"
	"sync"

	"github.com/niksmo/gsm-storefront/internal/core/port"
)

var (
	_ port.StoreOpener   = (*MemoryStore)(nil)
	_ port.KeyValueStore = (*memoryBucket)(nil)
)

// MemoryStore keeps visitor storage in process memory. It is lost on
// restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Open(visitorID string) port.KeyValueStore {
	return memoryBucket{s, visitorID}
}

type memoryBucket struct {
	s         *MemoryStore
	visitorID string
}

func (b memoryBucket) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	v, ok := b.s.data[b.visitorID][key]
	return v, ok, nil
}

func (b memoryBucket) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	m, ok := b.s.data[b.visitorID]
	if !ok {
		m = make(map[string]string)
		b.s.data[b.visitorID] = m
	}
	m[key] = value
	return nil
}

func (b memoryBucket) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	delete(b.s.data[b.visitorID], key)
	return nil
}
