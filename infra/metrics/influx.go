package metrics

import (
	"context"
	"math"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.InfluxConfig) *InfluxSink {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing backend never blocks a
// simulation run.
func NewInfluxSinkWithFallback(cfg coremetrics.InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes the step as a line-protocol point.
func (s *InfluxSink) RecordStep(rec coremetrics.StepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("grid_step").
		AddTag("run_id", rec.RunID).
		AddTag("episode", strconv.Itoa(rec.Episode)).
		AddField("step", rec.Step).
		AddField("reward", round3(rec.Reward)).
		AddField("cost", round3(rec.Cost)).
		AddField("co2", round3(rec.CO2)).
		AddField("waste_mw", round3(rec.WasteMW)).
		AddField("blackout_mw", round3(rec.BlackoutMW)).
		AddField("balance_mw", round3(rec.BalanceMW)).
		AddField("demand_mw", round3(rec.DemandMW)).
		AddField("renewable_mw", round3(rec.RenewableMW)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEpisode writes the episode summary.
func (s *InfluxSink) RecordEpisode(rec coremetrics.EpisodeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("grid_episode").
		AddTag("run_id", rec.RunID).
		AddTag("outcome", rec.Outcome).
		AddField("episode", rec.Episode).
		AddField("steps", rec.Steps).
		AddField("total_reward", round3(rec.TotalReward)).
		AddField("total_cost", round3(rec.TotalCost)).
		AddField("total_co2", round3(rec.TotalCO2)).
		AddField("total_waste_mw", round3(rec.TotalWasteMW)).
		AddField("total_unmet_mw", round3(rec.TotalUnmetMW)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
