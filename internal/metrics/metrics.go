package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geo_attendance"

// Metrics - счетчики исходов попыток отметки и операций с лицом
type Metrics struct {
	attempts      *prometheus.CounterVec
	enrollments   prometheus.Counter
	verifications *prometheus.CounterVec
}

// New регистрирует счетчики в reg; в тестах передается отдельный prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Attendance attempts by terminal outcome.",
		}, []string{"outcome"}),
		enrollments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "face_enrollments_total",
			Help:      "Successful face enrollments.",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "face_verifications_total",
			Help:      "Face verification attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordAttempt(outcome string) {
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordEnrollment() {
	m.enrollments.Inc()
}

func (m *Metrics) RecordVerification(matched bool) {
	result := "mismatch"
	if matched {
		result = "match"
	}
	m.verifications.WithLabelValues(result).Inc()
}
