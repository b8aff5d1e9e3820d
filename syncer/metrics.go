package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the synchronizer's Prometheus collectors. All collectors are
// labelled by VRE so one daemon instance can serve several environments.
type Metrics struct {
	ServicesProcessed *prometheus.CounterVec
	Diagnostics       *prometheus.CounterVec
	PushErrors        *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
}

// NewMetrics registers the collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ServicesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eoscsync",
			Name:      "services_processed_total",
			Help:      "Services handled per run, by outcome.",
		}, []string{"vre", "outcome"}),
		Diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eoscsync",
			Name:      "mapping_diagnostics_total",
			Help:      "Data-quality diagnostics collected while mapping.",
		}, []string{"vre"}),
		PushErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eoscsync",
			Name:      "push_errors_total",
			Help:      "Errors while creating or updating portal resources.",
		}, []string{"vre"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eoscsync",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one VRE synchronization.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"vre"}),
	}
}
