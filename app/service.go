package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/episode"
	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/model"
	"github.com/kilianp07/gridsim/core/policy"
	"github.com/kilianp07/gridsim/infra/logger"
	"github.com/kilianp07/gridsim/infra/metrics"
	"github.com/kilianp07/gridsim/internal/eventbus"
	"github.com/kilianp07/gridsim/pkg/export"
)

// Service runs batches of simulation episodes from a validated
// configuration: it wires sinks, drives one controller per worker and
// exports step records when configured.
type Service struct {
	cfg   *config.Config
	specs []model.PlantSpec
	log   logger.Logger
	sink  coremetrics.Sink
	bus   *eventbus.Bus[coremetrics.StepRecord]
	runID string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	specs, err := config.Specs(cfg.Plants)
	if err != nil {
		return nil, err
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx))
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	return &Service{
		cfg:   cfg,
		specs: specs,
		log:   logger.New("service"),
		sink:  sink,
		bus:   eventbus.New[coremetrics.StepRecord](64),
		runID: uuid.NewString(),
	}, nil
}

// Bus exposes the step-record bus for additional observers.
func (s *Service) Bus() *eventbus.Bus[coremetrics.StepRecord] { return s.bus }

// Run executes the configured number of episodes, spreading them over the
// configured number of independent instances. It returns once all episodes
// finished or the context was canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			addr := ":" + s.cfg.Metrics.PrometheusPort
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	// Progress observer: lossy by design, never stalls the workers.
	progress := s.bus.Subscribe()
	go func() {
		for rec := range progress {
			s.log.Debugw("step", map[string]any{
				"episode": rec.Episode,
				"step":    rec.Step,
				"reward":  rec.Reward,
				"balance": rec.BalanceMW,
			})
		}
	}()

	type episodeOut struct {
		records []coremetrics.StepRecord
		summary coremetrics.EpisodeRecord
		err     error
	}

	jobs := make(chan int)
	outs := make(chan episodeOut, s.cfg.Sim.Episodes)
	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Sim.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns a full instance: controller, policy and
			// RNG stream are never shared.
			ctrl, pol, err := s.newInstance()
			if err != nil {
				outs <- episodeOut{err: err}
				return
			}
			for ep := range jobs {
				recs, summary, err := s.runEpisode(ctx, ctrl, pol, ep)
				outs <- episodeOut{records: recs, summary: summary, err: err}
				if ctx.Err() != nil {
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for ep := 0; ep < s.cfg.Sim.Episodes; ep++ {
			select {
			case jobs <- ep:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outs)
	}()

	var all []coremetrics.StepRecord
	var firstErr error
	for out := range outs {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		all = append(all, out.records...)
		if er, ok := s.sink.(coremetrics.EpisodeRecorder); ok {
			if err := er.RecordEpisode(out.summary); err != nil {
				s.log.Errorf("record episode: %v", err)
			}
		}
		s.log.Infof("episode %d finished: %s after %d steps, total reward %.1f",
			out.summary.Episode, out.summary.Outcome, out.summary.Steps, out.summary.TotalReward)
	}
	if firstErr != nil {
		return firstErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.export(all)
}

// newInstance builds an isolated controller and policy pair.
func (s *Service) newInstance() (*episode.Controller, policy.Policy, error) {
	ctrl, err := episode.New(s.specs, s.cfg.Forecast, s.cfg.Reward, s.cfg.Episode, logger.New("episode"))
	if err != nil {
		return nil, nil, err
	}
	var pol policy.Policy
	switch s.cfg.Sim.Policy {
	case config.PolicyLP:
		pol = policy.NewLPPolicy(s.specs, ctrl.Layout())
	default:
		pol = policy.NewMeritOrder(s.specs, ctrl.Layout())
	}
	return ctrl, pol, nil
}

// runEpisode drives one episode to its terminal state.
func (s *Service) runEpisode(ctx context.Context, ctrl *episode.Controller, pol policy.Policy, ep int) ([]coremetrics.StepRecord, coremetrics.EpisodeRecord, error) {
	seed := s.cfg.Sim.Seed + int64(ep)
	obs, err := ctrl.Reset(seed)
	if err != nil {
		return nil, coremetrics.EpisodeRecord{}, err
	}

	var recs []coremetrics.StepRecord
	var totalReward float64
	for ctrl.Phase() == episode.Running {
		if ctx.Err() != nil {
			return nil, coremetrics.EpisodeRecord{}, ctx.Err()
		}
		res, err := ctrl.Step(pol.Act(obs))
		if err != nil {
			return nil, coremetrics.EpisodeRecord{}, err
		}
		obs = res.Observation
		totalReward += res.Reward

		rec := coremetrics.StepRecord{
			RunID:       s.runID,
			Episode:     ep,
			Step:        int(res.Info["step"]),
			Seed:        seed,
			Reward:      res.Reward,
			Cost:        res.Info["cost"],
			CO2:         res.Info["co2"],
			WasteMW:     res.Info["waste_mw"],
			BlackoutMW:  res.Info["blackout_mw"],
			BalanceMW:   res.Info["balance_mw"],
			DemandMW:    res.Info["demand_mw"],
			RenewableMW: res.Info["renewable_mw"],
			Terminated:  res.Terminated,
			Truncated:   res.Truncated,
		}
		recs = append(recs, rec)
		s.bus.Publish(rec)
		if err := s.sink.RecordStep(rec); err != nil {
			s.log.Errorf("record step: %v", err)
		}
	}

	st := ctrl.State()
	summary := coremetrics.EpisodeRecord{
		RunID:        s.runID,
		Episode:      ep,
		Seed:         seed,
		Steps:        st.Step,
		TotalReward:  totalReward,
		TotalCost:    st.CumulativeCost,
		TotalCO2:     st.CumulativeCO2,
		TotalWasteMW: st.CumulativeWasteMW,
		TotalUnmetMW: st.CumulativeUnmetMW,
		Outcome:      ctrl.Phase().String(),
	}
	return recs, summary, nil
}

// export writes the collected step records when an export target is
// configured. Records are ordered by episode then step so reruns produce
// identical files.
func (s *Service) export(recs []coremetrics.StepRecord) error {
	if s.cfg.Export.Format == "" || len(recs) == 0 {
		return nil
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Episode != recs[j].Episode {
			return recs[i].Episode < recs[j].Episode
		}
		return recs[i].Step < recs[j].Step
	})
	f, err := os.Create(s.cfg.Export.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if s.cfg.Export.Format == "json" {
		return export.WriteJSON(f, recs)
	}
	return export.WriteCSV(f, recs)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
