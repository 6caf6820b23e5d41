package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client activity. A nil *Metrics records nothing.
type Metrics struct {
	Submissions  *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
	PollAttempts prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lbc_submissions_total",
				Help: "Experiment submissions by outcome",
			},
			[]string{"outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lbc_cache_lookups_total",
				Help: "Submission cache lookups by result",
			},
			[]string{"result"},
		),
		PollAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lbc_poll_attempts_total",
			Help: "Job status polls",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.CacheLookups, m.PollAttempts)
	}
	return m
}

func (m *Metrics) submission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) cacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) poll() {
	if m != nil {
		m.PollAttempts.Inc()
	}
}
