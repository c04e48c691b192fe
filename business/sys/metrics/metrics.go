// Package metrics constructs the metrics the application will track.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The prometheus package is already based on a
// singleton for the set of collectors it registers.
var m *metrics

// =============================================================================

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to prometheus.
type metrics struct {
	goroutines   prometheus.Gauge
	requests     prometheus.Counter
	errors       prometheus.Counter
	panics       prometheus.Counter
	transactions prometheus.Counter
	blocks       prometheus.Counter
	resolves     *prometheus.CounterVec
	chainLength  prometheus.Gauge
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of prometheus is registered as a singleton.
func init() {
	const namespace = "node"

	m = &metrics{
		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Number of goroutines sampled on each request.",
		}),
		requests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of requests handled.",
		}),
		errors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of requests that failed.",
		}),
		panics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of panics recovered.",
		}),
		transactions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Number of transactions added to the pending pool.",
		}),
		blocks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Number of blocks mined by this node.",
		}),
		resolves: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consensus_rounds_total",
			Help:      "Number of consensus rounds by outcome.",
		}, []string{"outcome"}),
		chainLength: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the local chain.",
		}),
	}
}

// =============================================================================

// AddGoroutines refreshes the goroutine metric every 100 requests.
func AddGoroutines(requests int64) {
	if requests%100 == 0 {
		m.goroutines.Set(float64(runtime.NumGoroutine()))
	}
}

// AddRequests increments the request metric by 1.
func AddRequests() {
	m.requests.Inc()
}

// AddErrors increments the errors metric by 1.
func AddErrors() {
	m.errors.Inc()
}

// AddPanics increments the panics metric by 1.
func AddPanics() {
	m.panics.Inc()
}

// AddTransactions increments the transactions metric by 1.
func AddTransactions() {
	m.transactions.Inc()
}

// AddBlocks increments the mined blocks metric by 1.
func AddBlocks() {
	m.blocks.Inc()
}

// AddResolve records the outcome of a consensus round.
func AddResolve(replaced bool) {
	outcome := "kept"
	if replaced {
		outcome = "replaced"
	}
	m.resolves.WithLabelValues(outcome).Inc()
}

// SetChainLength records the number of blocks in the local chain.
func SetChainLength(length int) {
	m.chainLength.Set(float64(length))
}
