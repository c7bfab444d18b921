package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordAttempt("PRESENT")
	m.RecordAttempt("PRESENT")
	m.RecordAttempt("OUT_OF_RANGE")
	m.RecordEnrollment()
	m.RecordVerification(true)
	m.RecordVerification(false)
	m.RecordVerification(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("PRESENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("OUT_OF_RANGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enrollments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("match")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifications.WithLabelValues("mismatch")))
}
