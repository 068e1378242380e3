package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.NotificationCreated("document", "critical")
	m.NotificationCreated("document", "critical")
	m.DuplicateSkipped("document")
	m.RecordFailed("process")
	m.DeliveryFailed("email")
	m.ObserveScan("document", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.notificationsCreated.WithLabelValues("document", "critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicatesSkipped.WithLabelValues("document")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scanFailures.WithLabelValues("process")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveryFailures.WithLabelValues("email")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.scanDuration))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.NotificationCreated("document", "info")
		m.DuplicateSkipped("document")
		m.RecordFailed("document")
		m.DeliveryFailed("telegram")
		m.ObserveScan("document", time.Second)
	})
}
