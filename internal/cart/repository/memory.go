package repository

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps carts in process memory. Used when Redis is not reachable and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string][]byte)}
}

func (r *MemoryRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.carts[sessionID]), nil
}

func (r *MemoryRepository) Save(ctx context.Context, sessionID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = slices.Clone(data)
	return nil
}
