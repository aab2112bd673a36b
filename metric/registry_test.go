package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edistreams/errors"
)

func TestNewRegistryInstallsCoreMetrics(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.CoreMetrics())

	r.Metrics.RecordSegmentsRead("input-file", 21)
	assert.Equal(t, 21.0,
		testutil.ToFloat64(r.Metrics.SegmentsRead.WithLabelValues("input-file")))

	r.Metrics.RecordTransactionAssembled("input-file", "00501-HC-005010X222A1-837", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.Metrics.TransactionsAssembled.WithLabelValues("input-file", "00501-HC-005010X222A1-837", "ok")))
}

func TestRecordHelpers(t *testing.T) {
	m := NewMetrics()

	m.RecordValidationFailure("input-file", "invalid")
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.ValidationFailures.WithLabelValues("input-file", "invalid")))

	m.RecordClaimPublished("input-file", "claims.professional.v1")
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.ClaimsPublished.WithLabelValues("input-file", "claims.professional.v1")))

	m.RecordError("input-file", "transient")
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("input-file", "transient")))

	m.RecordNATSStatus(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSConnected))
	m.RecordNATSStatus(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NATSConnected))

	m.RecordNATSReconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSReconnects))

	m.RecordCircuitBreakerState(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NATSCircuitBreaker))

	m.RecordProcessingDuration("input-file", "assemble", 50*time.Millisecond)
}

func TestRegisterComponentMetric(t *testing.T) {
	r := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edistreams_test_counter",
		Help: "test counter",
	})
	require.NoError(t, r.Register("input-file", "test_counter", counter))

	err := r.Register("input-file", "test_counter", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregisterComponentMetric(t *testing.T) {
	r := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edistreams_test_counter",
		Help: "test counter",
	})
	require.NoError(t, r.Register("input-file", "test_counter", counter))

	assert.True(t, r.Unregister("input-file", "test_counter"))
	assert.False(t, r.Unregister("input-file", "test_counter"))

	// Re-registration after unregister succeeds.
	assert.NoError(t, r.Register("input-file", "test_counter", counter))
}
