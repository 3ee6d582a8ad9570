package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/loom/pkg/ports"
)

// Mask replaces the values of redacted fields.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of JSON object
// fields whose names match any of the patterns before the snapshot is written.
// Snapshots that are not JSON objects or arrays are stored unchanged.
//
// Masking is one-way: use it for stores that feed audits or exports, not for
// the store a session restores from.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, key string, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return m.next.Save(ctx, key, data)
	}

	switch doc.(type) {
	case map[string]any, []any:
	default:
		return m.next.Save(ctx, key, data)
	}

	masked, err := json.Marshal(m.mask(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal masked snapshot: %w", err)
	}
	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// mask walks a decoded JSON document. The document is freshly decoded, so it
// is modified in place.
func (m *piiMiddleware) mask(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if m.matches(k) {
				t[k] = Mask
				continue
			}
			t[k] = m.mask(child)
		}
	case []any:
		for i, child := range t {
			t[i] = m.mask(child)
		}
	}
	return v
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
