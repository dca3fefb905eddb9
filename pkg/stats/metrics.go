package stats

import "github.com/prometheus/client_golang/prometheus"

const namespace = "escrow"

var (
	// EscrowsOpened counts the escrows opened since startup.
	EscrowsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "opened_total",
		Help:      "Number of opened escrows.",
	})
	// EscrowsSettled counts the escrows settled by a taker since startup.
	EscrowsSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settled_total",
		Help:      "Number of escrows settled by a taker.",
	})
	// EscrowsRefunded counts the escrows refunded to their maker since startup.
	EscrowsRefunded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunded_total",
		Help:      "Number of escrows refunded to their maker.",
	})
	// FailedOperations counts failed escrow operations by operation and error
	// category.
	FailedOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "failed_operations_total",
		Help:      "Number of failed escrow operations.",
	}, []string{"operation", "category"})

	// HTTPRequests counts the served requests by route, method and status code.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of served HTTP requests.",
	}, []string{"route", "method", "code"})
	// HTTPRequestDuration observes the latency of the served requests by route.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of served HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		EscrowsOpened,
		EscrowsSettled,
		EscrowsRefunded,
		FailedOperations,
		HTTPRequests,
		HTTPRequestDuration,
	)
}
