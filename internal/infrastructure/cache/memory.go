package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process JobLocker used when Redis is disabled and in
// tests. Claims only serialize runs within a single process.
type MemoryLocker struct {
	mu    sync.Mutex
	items map[string]time.Time
}

// NewMemoryLocker creates a new in-memory locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		items: make(map[string]time.Time),
	}
}

// TryLock attempts to acquire the lock for key, returning true on success
func (ml *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if expiry, exists := ml.items[key]; exists && time.Now().Before(expiry) {
		return false, nil
	}
	ml.items[key] = time.Now().Add(ttl)
	return true, nil
}

// Unlock releases the lock for key
func (ml *MemoryLocker) Unlock(_ context.Context, key string) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	delete(ml.items, key)
	return nil
}
