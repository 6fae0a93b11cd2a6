package shared

import (
	"context"
	"time"
)

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	// Obtain acquires the lock or returns ErrLockNotAcquired.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}
