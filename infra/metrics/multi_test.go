package metrics

import (
	"errors"
	"testing"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

type countingSink struct {
	steps    int
	episodes int
	err      error
}

func (c *countingSink) RecordStep(coremetrics.StepRecord) error {
	c.steps++
	return c.err
}

func (c *countingSink) RecordEpisode(coremetrics.EpisodeRecord) error {
	c.episodes++
	return c.err
}

// stepOnlySink has no episode granularity.
type stepOnlySink struct{ steps int }

func (s *stepOnlySink) RecordStep(coremetrics.StepRecord) error {
	s.steps++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &countingSink{}
	b := &stepOnlySink{}
	m := NewMultiSink(a, b)

	if err := m.RecordStep(coremetrics.StepRecord{}); err != nil {
		t.Fatalf("record step: %v", err)
	}
	if a.steps != 1 || b.steps != 1 {
		t.Fatalf("step fanout: a=%d b=%d", a.steps, b.steps)
	}

	if err := m.RecordEpisode(coremetrics.EpisodeRecord{}); err != nil {
		t.Fatalf("record episode: %v", err)
	}
	if a.episodes != 1 {
		t.Fatalf("episode fanout: a=%d", a.episodes)
	}
}

func TestMultiSinkPropagatesErrors(t *testing.T) {
	boom := errors.New("backend down")
	m := NewMultiSink(&countingSink{err: boom}, &countingSink{})
	if err := m.RecordStep(coremetrics.StepRecord{}); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}
