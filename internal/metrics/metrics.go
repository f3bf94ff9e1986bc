package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Mutation engine
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_mutations_total",
			Help: "Balance mutations by outcome",
		},
		[]string{"outcome"}, // succeeded|not_found|insufficient_funds|conflict|lock_timeout|invalid_amount|error
	)
	ConflictRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_mutation_conflict_retries_total",
			Help: "Conditional update lost races; should stay at zero under row locking",
		},
	)

	// Cache
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Account cache hits",
		},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Account cache misses",
		},
	)

	// Event bus
	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Failed event publishes (mutations themselves unaffected)",
		},
	)
	BusConnectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bus_connection_state",
			Help: "Event bus connection state (1 connected, 0 down)",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// handler for the /metrics endpoint
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(ConflictRetries)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(EventPublishFailures)
	prometheus.MustRegister(BusConnectionState)
	prometheus.MustRegister(WorkerQueueDepth)
}
