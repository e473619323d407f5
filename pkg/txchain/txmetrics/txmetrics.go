// Package txmetrics exports chained transaction lifecycle events as Prometheus metrics.
package txmetrics

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/marcodd23/go-txchain/pkg/txchain"
)

const namespace = "txchain"

// Observer implements txchain.Observer on top of Prometheus collectors.
type Observer struct {
	sessions *prom.CounterVec
	steps    *prom.CounterVec
	depth    prom.Histogram
	active   prom.Gauge
}

var _ txchain.Observer = (*Observer)(nil)

// New creates the collectors and registers them on reg.
func New(reg prom.Registerer) (*Observer, error) {
	o := &Observer{
		sessions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Chained sessions by outcome.",
		}, []string{"outcome"}),
		steps: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Units of work run inside chained sessions, by outcome.",
		}, []string{"outcome"}),
		depth: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "committed_session_steps",
			Help:      "Number of units of work in committed sessions.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		active: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions holding an open transaction.",
		}),
	}

	for _, c := range []prom.Collector{o.sessions, o.steps, o.depth, o.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

func (o *Observer) SessionStarted(_ context.Context, _ int64) {
	o.active.Inc()
}

func (o *Observer) StepCompleted(_ context.Context, _ int64, err error) {
	if err != nil {
		o.steps.WithLabelValues("error").Inc()
		return
	}

	o.steps.WithLabelValues("ok").Inc()
}

func (o *Observer) SessionCommitted(_ context.Context, _ int64, steps int) {
	o.active.Dec()
	o.sessions.WithLabelValues("committed").Inc()
	o.depth.Observe(float64(steps))
}

func (o *Observer) SessionRolledBack(_ context.Context, _ int64, _ error) {
	o.active.Dec()
	o.sessions.WithLabelValues("rolled_back").Inc()
}

func (o *Observer) AcquisitionFailed(_ context.Context, _ error) {
	o.sessions.WithLabelValues("acquisition_failed").Inc()
}
