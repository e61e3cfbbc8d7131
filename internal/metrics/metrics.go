// Package metrics exposes prometheus counters for voting and uploads.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namePrefix = "exitpoll_"

type Metrics struct {
	votesCast     prometheus.Counter
	votesRejected *prometheus.CounterVec
	uploads       *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		votesCast: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: namePrefix + "votes_cast_total",
				Help: "Total number of accepted votes",
			},
		),
		votesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: namePrefix + "votes_rejected_total",
				Help: "Total number of rejected vote attempts by reason",
			},
			[]string{"reason"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: namePrefix + "asset_uploads_total",
				Help: "Total number of asset uploads by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.votesCast, m.votesRejected, m.uploads)
	return m
}

// The recorders below are safe on a nil *Metrics so tests can skip metrics.

func (m *Metrics) VoteCast() {
	if m == nil {
		return
	}
	m.votesCast.Inc()
}

func (m *Metrics) VoteRejected(reason string) {
	if m == nil {
		return
	}
	m.votesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Upload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.uploads.WithLabelValues(result).Inc()
}
