package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for upstream place calls.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeUpstreamError = "upstream_error"
	OutcomeConfigError   = "config_error"
)

// DiscoveryMetrics exposes counters/histograms for the discovery-to-lead flow.
type DiscoveryMetrics struct {
	placesCalls   *prometheus.CounterVec
	placesLatency *prometheus.HistogramVec
	placesResults *prometheus.HistogramVec
	rateLimited   *prometheus.CounterVec
	leadsCreated  *prometheus.CounterVec
}

func NewDiscoveryMetrics(reg prometheus.Registerer) *DiscoveryMetrics {
	m := &DiscoveryMetrics{
		placesCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "territory",
			Subsystem: "places",
			Name:      "calls_total",
			Help:      "Places directory calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		placesLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "territory",
			Subsystem: "places",
			Name:      "call_latency_seconds",
			Help:      "Latency of places directory calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		placesResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "territory",
			Subsystem: "places",
			Name:      "search_results",
			Help:      "Results returned per search after truncation",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "territory",
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the per-actor rate limiter",
		}, []string{"scope"}),
		leadsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "territory",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Leads created through manual intake",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.placesCalls, m.placesLatency, m.placesResults, m.rateLimited, m.leadsCreated)
	return m
}

func (m *DiscoveryMetrics) ObservePlacesCall(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.placesCalls.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeInvalid {
		m.placesLatency.WithLabelValues(operation).Observe(seconds)
	}
}

func (m *DiscoveryMetrics) ObserveSearchResults(count int) {
	if m == nil {
		return
	}
	m.placesResults.WithLabelValues("search").Observe(float64(count))
}

func (m *DiscoveryMetrics) ObserveRateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}

func (m *DiscoveryMetrics) ObserveLeadCreated(status string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(status).Inc()
}
