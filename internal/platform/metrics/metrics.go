package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source labels for resolver outcomes.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	legResolutions    *prometheus.CounterVec
	autocompletes     *prometheus.CounterVec
	liveSessions      prometheus.Gauge
	liveEvents        *prometheus.CounterVec
	broadcastFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		legResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triptracks_leg_resolutions_total",
			Help: "Route legs resolved, by source (cache, provider, fallback).",
		}, []string{"source"}),
		autocompletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triptracks_autocomplete_total",
			Help: "Autocomplete lookups, by source (cache, provider, fallback).",
		}, []string{"source"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "triptracks_live_sessions",
			Help: "Trips with at least one connected live session.",
		}),
		liveEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triptracks_live_events_total",
			Help: "Live-session events broadcast, by type.",
		}, []string{"type"}),
		broadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triptracks_broadcast_failures_total",
			Help: "Per-recipient send failures during live-session fan-out.",
		}),
	}

	reg.MustRegister(m.legResolutions, m.autocompletes, m.liveSessions, m.liveEvents, m.broadcastFailures)
	return m
}

func (m *Metrics) LegResolved(source string) {
	if m == nil {
		return
	}
	m.legResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) AutocompleteServed(source string) {
	if m == nil {
		return
	}
	m.autocompletes.WithLabelValues(source).Inc()
}

func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}

func (m *Metrics) EventBroadcast(eventType string) {
	if m == nil {
		return
	}
	m.liveEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) BroadcastFailed() {
	if m == nil {
		return
	}
	m.broadcastFailures.Inc()
}
