package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LedgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Points, treasury and shop mutations by outcome",
		},
		[]string{"op", "result"},
	)
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Currently open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(LedgerOps)
	prometheus.MustRegister(WSConnections)
}

// Observe counts one ledger operation as ok or error.
func Observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	LedgerOps.WithLabelValues(op, result).Inc()
}
