package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/aretw0/loom/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{}

func (ping) ActionName() string { return "ping" }

func pinger(n *int, _ ping) []*effect.Effect[ping] {
	*n++
	return []*effect.Effect[ping]{effect.None[ping]()}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	s := store.New(0, pinger, store.WithName("pinger"), store.WithHooks(m.Hooks()))
	require.NoError(t, s.Send(ping{}))
	require.NoError(t, s.Send(ping{}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Actions.WithLabelValues("pinger", "ping")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EffectsStarted.WithLabelValues("pinger", "ping")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReduceDuration))

	m.Hooks().OnDrop(context.Background(), &domain.DropEvent{
		EventBase: domain.EventBase{Store: "pinger"},
		Name:      "ping",
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Drops.WithLabelValues("pinger", "ping")))

	t.Run("Handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		observability.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `loom_actions_total{action="ping",store="pinger"} 2`)
	})
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	first.Actions.WithLabelValues("s", "a").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Actions.WithLabelValues("s", "a")))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := store.New(0, pinger, store.WithName("pinger"), store.WithHooks(observability.LogHooks(logger)))
	require.NoError(t, s.Send(ping{}))

	out := buf.String()
	assert.Contains(t, out, "msg=action")
	assert.Contains(t, out, "msg=effect_start")
	assert.Contains(t, out, "store=pinger")
}
