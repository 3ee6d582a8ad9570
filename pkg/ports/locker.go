package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a key across processes, so that two
// replicas never run the same session store at once.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock expires
	// after ttl if it is never released. The returned UnlockFunc must be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
