package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/loom/pkg/effect"
)

func noop(*int, string) []*effect.Effect[string] { return nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(noop, func() int { return 0 })
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Open(ctx, sid)
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	if running := mgr.Running(); running != 0 {
		t.Errorf("expected no running sessions, got %d", running)
	}
}
