package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

// PromSink records simulation steps and episode outcomes in Prometheus
// metrics.
type PromSink struct {
	steps    *prometheus.CounterVec
	episodes *prometheus.CounterVec
	reward   prometheus.Histogram
	balance  prometheus.Gauge
	unmet    prometheus.Gauge
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridsim_steps_total",
		Help: "Total number of simulation steps",
	}, []string{"blackout"})
	episodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridsim_episodes_total",
		Help: "Total number of finished episodes",
	}, []string{"outcome"})
	reward := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridsim_step_reward",
		Help:    "Per-step reward distribution",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	balance := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridsim_balance_mw",
		Help: "Supply minus demand at the last recorded step",
	})
	unmet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridsim_unmet_demand_mw",
		Help: "Unmet demand at the last recorded step",
	})

	s := &PromSink{steps: steps, episodes: episodes, reward: reward, balance: balance, unmet: unmet}
	if err := register(reg, steps, func(c prometheus.Collector) { s.steps = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, episodes, func(c prometheus.Collector) { s.episodes = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, reward, func(c prometheus.Collector) { s.reward = c.(prometheus.Histogram) }); err != nil {
		return nil, err
	}
	if err := register(reg, balance, func(c prometheus.Collector) { s.balance = c.(prometheus.Gauge) }); err != nil {
		return nil, err
	}
	if err := register(reg, unmet, func(c prometheus.Collector) { s.unmet = c.(prometheus.Gauge) }); err != nil {
		return nil, err
	}
	return s, nil
}

// register tolerates duplicate registration so several sinks can share a
// process-wide registry.
func register(reg prometheus.Registerer, c prometheus.Collector, replace func(prometheus.Collector)) error {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return nil
		}
		return err
	}
	return nil
}

// RecordStep updates the step counters and gauges.
func (s *PromSink) RecordStep(rec coremetrics.StepRecord) error {
	s.steps.WithLabelValues(strconv.FormatBool(rec.BlackoutMW > 0)).Inc()
	s.reward.Observe(-rec.Reward)
	s.balance.Set(rec.BalanceMW)
	s.unmet.Set(rec.BlackoutMW)
	return nil
}

// RecordEpisode counts finished episodes by outcome.
func (s *PromSink) RecordEpisode(rec coremetrics.EpisodeRecord) error {
	s.episodes.WithLabelValues(rec.Outcome).Inc()
	return nil
}
