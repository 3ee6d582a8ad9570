package middleware

import (
	"context"
	"time"

	"github.com/aretw0/loom/pkg/ports"
)

type ttlMiddleware struct {
	ports.SnapshotStore
	expiring ports.ExpiringStore
	ttl      time.Duration
}

// NewTTLMiddleware makes every Save expire after ttl when the wrapped store
// supports expiry. Other stores, and a zero ttl, are returned unchanged.
func NewTTLMiddleware(ttl time.Duration) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		expiring, ok := next.(ports.ExpiringStore)
		if !ok || ttl <= 0 {
			return next
		}
		return &ttlMiddleware{SnapshotStore: next, expiring: expiring, ttl: ttl}
	}
}

func (m *ttlMiddleware) Save(ctx context.Context, key string, data []byte) error {
	return m.expiring.SaveWithTTL(ctx, key, data, m.ttl)
}
