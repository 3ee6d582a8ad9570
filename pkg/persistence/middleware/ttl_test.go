package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/loom/pkg/adapters/file"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/persistence/middleware"
)

func TestTTLMiddleware_Expires(t *testing.T) {
	now := time.Unix(1000, 0)
	base := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	store := middleware.NewTTLMiddleware(time.Minute)(base)
	ctx := context.Background()

	if err := store.Save(ctx, "k", []byte(`{}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Load(ctx, "k"); err != nil {
		t.Fatalf("Load before expiry failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "k"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after expiry, got %v", err)
	}
}

func TestTTLMiddleware_PassThrough(t *testing.T) {
	base := file.New(t.TempDir())
	if got := middleware.NewTTLMiddleware(time.Minute)(base); got != base {
		t.Fatal("stores without expiry must be returned unchanged")
	}

	mem := memory.NewStore()
	if got := middleware.NewTTLMiddleware(0)(mem); got != mem {
		t.Fatal("zero ttl must return the store unchanged")
	}
}
