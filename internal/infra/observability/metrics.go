package observability

import (
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the insights service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	sourceErrors    *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	loadsTotal      *prometheus.CounterVec
	rowsAccepted    prometheus.Counter
	rowsRejected    *prometheus.CounterVec
	transactions    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insights_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_source_errors_total",
				Help: "Total errors fetching ledger text.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		loadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_ledger_loads_total",
				Help: "Total ledger loads by outcome.",
			},
			[]string{"status"},
		),
		rowsAccepted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "insights_ledger_rows_accepted_total",
				Help: "Total ledger rows accepted across loads.",
			},
		),
		rowsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_ledger_rows_rejected_total",
				Help: "Total ledger rows rejected across loads, by reason.",
			},
			[]string{"reason"},
		),
		transactions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "insights_ledger_transactions",
				Help: "Transactions held by the current load.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrSourceError increments the ledger source error counter.
func (m *Metrics) IncrSourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordLoad records a completed load and its row counts.
func (m *Metrics) RecordLoad(stats domain.LoadStats) {
	m.loadsTotal.WithLabelValues("success").Inc()
	m.rowsAccepted.Add(float64(stats.Accepted))
	for reason, n := range stats.RejectReasons {
		m.rowsRejected.WithLabelValues(reason).Add(float64(n))
	}
	m.transactions.Set(float64(stats.Accepted))
}

// IncrLoadFailure counts a load that never reached the engine.
func (m *Metrics) IncrLoadFailure() {
	m.loadsTotal.WithLabelValues("error").Inc()
}

// SourceCache is the cache label used for fetched ledger text.
const SourceCache = "ledger_source"

var rejectReasons = []string{
	domain.RejectAmount,
	domain.RejectCategory,
	domain.RejectDate,
	domain.RejectMalformed,
}

// LedgerSnapshot returns the load counters suitable for the
// GET /v1/metrics/ledger endpoint.
func (m *Metrics) LedgerSnapshot() *domain.LedgerMetrics {
	// Prometheus counters expose cumulative values.
	loads := getCounterValue(m.loadsTotal, "success")
	failures := getCounterValue(m.loadsTotal, "error")
	accepted := readCounter(m.rowsAccepted)
	hits := getCounterValue(m.cacheHits, SourceCache)
	misses := getCounterValue(m.cacheMisses, SourceCache)

	rejected := make(map[string]int64, len(rejectReasons))
	rejectedTotal := float64(0)
	for _, reason := range rejectReasons {
		n := getCounterValue(m.rowsRejected, reason)
		rejected[reason] = int64(n)
		rejectedTotal += n
	}

	acceptanceRate := float64(0)
	if accepted+rejectedTotal > 0 {
		acceptanceRate = accepted / (accepted + rejectedTotal)
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		Loads:            int64(loads),
		LoadFailures:     int64(failures),
		RowsAccepted:     int64(accepted),
		RowsRejected:     rejected,
		AcceptanceRate:   acceptanceRate,
		SourceCacheHits:  int64(hits),
		SourceCacheMiss:  int64(misses),
		SourceCacheRatio: hitRate,
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
