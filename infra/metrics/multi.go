package metrics

import coremetrics "github.com/kilianp07/gridsim/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordStep(rec coremetrics.StepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordEpisode forwards episode summaries to sinks that support them.
func (m *MultiSink) RecordEpisode(rec coremetrics.EpisodeRecord) error {
	for _, s := range m.Sinks {
		if er, ok := s.(coremetrics.EpisodeRecorder); ok {
			if err := er.RecordEpisode(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
