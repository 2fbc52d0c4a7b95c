package hooks

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// NewMetricsHook returns a hook that exports per-operation counters and
// latencies on the global metrics set in Prometheus format:
//
//	tkv_store_ops_total{store="...",op="..."}
//	tkv_store_op_errors_total{store="...",op="..."}
//	tkv_store_op_duration_seconds{store="...",op="..."}
//
// The storeName label distinguishes multiple observed stores in one process.
// Counter creation is cached by the metrics package, so the hook is cheap
// enough to run inline; use an AsyncSink only if the hot path matters.
func NewMetricsHook(storeName string) HookFunc {
	return func(e Event) {
		// only completed operations carry an outcome and a duration
		if e.Phase != PhaseAfter {
			return
		}

		op := e.Op.String()

		metrics.GetOrCreateCounter(
			fmt.Sprintf(`tkv_store_ops_total{store=%q,op=%q}`, storeName, op)).Inc()

		if e.Err != nil {
			metrics.GetOrCreateCounter(
				fmt.Sprintf(`tkv_store_op_errors_total{store=%q,op=%q}`, storeName, op)).Inc()
		}

		metrics.GetOrCreateSummary(
			fmt.Sprintf(`tkv_store_op_duration_seconds{store=%q,op=%q}`, storeName, op)).
			Update(e.Duration.Seconds())
	}
}
