package middleware

import (
	"context"
	"strings"

	"github.com/aretw0/loom/pkg/ports"
)

type prefixMiddleware struct {
	next   ports.SnapshotStore
	prefix string
}

// NewPrefixMiddleware scopes the wrapped store to keys starting with prefix,
// so several consumers can share one backend. List only reports keys in
// scope, with the prefix removed.
func NewPrefixMiddleware(prefix string) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &prefixMiddleware{next: next, prefix: prefix}
	}
}

func (m *prefixMiddleware) Save(ctx context.Context, key string, data []byte) error {
	return m.next.Save(ctx, m.prefix+key, data)
}

func (m *prefixMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	return m.next.Load(ctx, m.prefix+key)
}

func (m *prefixMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, m.prefix+key)
}

func (m *prefixMiddleware) List(ctx context.Context) ([]string, error) {
	keys, err := m.next.List(ctx)
	if err != nil {
		return nil, err
	}
	scoped := make([]string, 0, len(keys))
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, m.prefix); ok {
			scoped = append(scoped, rest)
		}
	}
	return scoped, nil
}
