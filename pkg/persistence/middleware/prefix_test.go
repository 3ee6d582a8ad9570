package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/persistence/middleware"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixMiddleware_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, middleware.NewPrefixMiddleware("scope.")(memory.NewStore()))
}

func TestPrefixMiddleware_SharesBackend(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	sessions := middleware.NewPrefixMiddleware("session.")(base)
	favorites := middleware.NewPrefixMiddleware("favorites.")(base)

	require.NoError(t, sessions.Save(ctx, "a", []byte(`{}`)))
	require.NoError(t, favorites.Save(ctx, "a", []byte(`[2]`)))

	keys, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)

	data, err := favorites.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	all, err := base.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session.a", "favorites.a"}, all)
}
