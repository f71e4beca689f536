package waiter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zilgo/zilgo/pkg/core/transaction"
)

const (
	outcomeTimeout  = "timeout"
	outcomeCanceled = "canceled"
)

// Metrics used in monitoring service.
var (
	pollAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of GetTransaction queries made by confirmation pollers",
			Name:      "poll_attempts_total",
			Namespace: "zilgo",
		},
	)
	pollOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of finished confirmations by outcome",
			Name:      "poll_outcomes_total",
			Namespace: "zilgo",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		pollAttempts,
		pollOutcomes,
	)
}

func outcomeLabel(s transaction.Status) string {
	switch s {
	case transaction.Confirmed:
		return "confirmed"
	case transaction.Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}
