/*
Package observability turns store lifecycle hooks into logs and Prometheus metrics.

Both helpers return a domain.Hooks value, so they compose with store.WithHooks:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	s := store.New(initial, reducer,
		store.WithHooks(metrics.Hooks()),
		store.WithHooks(observability.LogHooks(logger)),
	)
*/
package observability
