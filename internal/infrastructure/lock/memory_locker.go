package lock

import (
	"context"
	"sync"
	"time"

	"github.com/hortifruti/backend/internal/domain/shared"
)

// MemoryLocker implements shared.Locker inside one process. Used when Redis
// is not configured and in tests.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	now   func() time.Time
	token uint64
}

type memoryEntry struct {
	token     uint64
	expiresAt time.Time
}

// NewMemoryLocker creates an empty locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryEntry), now: time.Now}
}

// Obtain takes key unless a live holder exists
func (l *MemoryLocker) Obtain(_ context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expiresAt) {
		return nil, shared.ErrLockNotAcquired
	}
	l.token++
	l.held[key] = memoryEntry{token: l.token, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: l.token}, nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  uint64
}

// Release frees the lock if this holder still owns it
func (l *memoryLock) Release(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	if e, ok := l.locker.held[l.key]; ok && e.token == l.token {
		delete(l.locker.held, l.key)
	}
	return nil
}

var _ shared.Locker = (*MemoryLocker)(nil)
