package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LegResolved(SourceFallback)
	m.LegResolved(SourceFallback)
	m.LegResolved(SourceCache)
	m.SetLiveSessions(3)
	m.BroadcastFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.legResolutions.WithLabelValues(SourceFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.legResolutions.WithLabelValues(SourceCache)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.liveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcastFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LegResolved(SourceProvider)
		m.AutocompleteServed(SourceCache)
		m.SetLiveSessions(1)
		m.EventBroadcast("chat")
		m.BroadcastFailed()
	})
}
