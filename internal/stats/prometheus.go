package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter mirrors a tier's counters into Prometheus counter
// metrics, grounded on the teacher's prometheus wiring in internal/net/circuit
// and internal/net/ratelimit's metrics surfaces. It is a thin read-through
// adapter: the Aggregator stays the source of truth, this just republishes
// its "hit", "miss" and "retry" counters on each Collect; other keys are
// not exported.
type PrometheusExporter struct {
	source Aggregator
	desc   *prometheus.Desc
}

// NewPrometheusExporter wraps a tier's Aggregator for Prometheus registration.
func NewPrometheusExporter(source Aggregator) *PrometheusExporter {
	return &PrometheusExporter{
		source: source,
		desc: prometheus.NewDesc(
			"trading_data_stream_cache_counter",
			"Cache tier counter value by tier name and counter key.",
			[]string{"tier", "key"}, nil,
		),
	}
}

func (e *PrometheusExporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.desc
}

func (e *PrometheusExporter) Collect(ch chan<- prometheus.Metric) {
	for _, key := range []string{HitKey, MissKey, "retry"} {
		ch <- prometheus.MustNewConstMetric(e.desc, prometheus.CounterValue,
			float64(e.source.Get(key)), e.source.Name(), key)
	}
}
