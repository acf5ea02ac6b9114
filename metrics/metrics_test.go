package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoad("csv", "ok", 20*time.Millisecond)
	m.ObserveLoad("csv", "ok", 10*time.Millisecond)
	m.ObserveLoad("sql", "error", time.Millisecond)
	m.SetDataset(500, 3)
	m.ObserveRequest("/api/kpis", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Loads.WithLabelValues("csv", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("sql", "error")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.Records))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Warnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/kpis", "200")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad("csv", "ok", time.Second)
		m.SetDataset(1, 0)
		m.ObserveCompute(time.Second)
		m.ObserveRequest("/", 200, time.Second)
	})
}
