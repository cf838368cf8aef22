package metrics

// StepRecord is one simulation step to be recorded for observability.
type StepRecord struct {
	RunID       string
	Episode     int
	Step        int
	Seed        int64
	Reward      float64
	Cost        float64
	CO2         float64
	WasteMW     float64
	BlackoutMW  float64
	BalanceMW   float64
	DemandMW    float64
	RenewableMW float64
	Terminated  bool
	Truncated   bool
}

// EpisodeRecord summarizes a finished episode.
type EpisodeRecord struct {
	RunID        string
	Episode      int
	Seed         int64
	Steps        int
	TotalReward  float64
	TotalCost    float64
	TotalCO2     float64
	TotalWasteMW float64
	TotalUnmetMW float64
	// Outcome is "terminated" (grid collapse) or "truncated" (max steps).
	Outcome string
}

// Sink records step results for observability purposes.
type Sink interface {
	RecordStep(rec StepRecord) error
}

// EpisodeRecorder records episode summaries. Sinks implement it when the
// backend has a meaningful episode granularity.
type EpisodeRecorder interface {
	RecordEpisode(rec EpisodeRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordStep(StepRecord) error       { return nil }
func (NopSink) RecordEpisode(EpisodeRecord) error { return nil }
