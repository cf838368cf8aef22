package app

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/gridsim/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sim.Episodes = 2
	cfg.Sim.Seed = 42
	cfg.Episode.MaxSteps = 6
	// Small forecast misses must never flip the outcome between runs.
	cfg.Episode.BlackoutThresholdMW = 1e6
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestServiceRunsEpisodes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Format = "csv"
	cfg.Export.Path = filepath.Join(t.TempDir(), "steps.csv")

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer svc.Close()

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(cfg.Export.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	// Header plus one row per step; the default fleet covers the load, so
	// both episodes run to truncation.
	if want := 1 + 2*cfg.Episode.MaxSteps; len(rows) != want {
		t.Fatalf("export rows %d, want %d", len(rows), want)
	}
	// Records are sorted by episode then step.
	if rows[1][1] != "0" || rows[1][2] != "1" {
		t.Fatalf("first record %v, want episode 0 step 1", rows[1])
	}
	last := rows[len(rows)-1]
	if last[1] != "1" || last[13] != "true" {
		t.Fatalf("last record %v, want episode 1 truncated", last)
	}
}

func TestServiceParallelRunsMatchSequential(t *testing.T) {
	run := func(parallelism int) [][]string {
		cfg := testConfig(t)
		cfg.Sim.Parallelism = parallelism
		cfg.Export.Format = "csv"
		cfg.Export.Path = filepath.Join(t.TempDir(), "steps.csv")
		svc, err := New(cfg)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer svc.Close()
		if err := svc.Run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}
		f, err := os.Open(cfg.Export.Path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return rows
	}

	seq := run(1)
	par := run(2)
	if len(seq) != len(par) {
		t.Fatalf("row counts differ: %d vs %d", len(seq), len(par))
	}
	// Identical up to the run id column: episode seeding is independent of
	// which worker picks the episode up.
	for i := range seq {
		for col := 1; col < len(seq[i]); col++ {
			if seq[i][col] != par[i][col] {
				t.Fatalf("row %d col %d: %q vs %q", i, col, seq[i][col], par[i][col])
			}
		}
	}
}

func TestServicePublishesStepRecords(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sim.Episodes = 1
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer svc.Close()

	sub := svc.Bus().Subscribe()
	seen := make(chan int, 1)
	go func() {
		n := 0
		for range sub {
			n++
		}
		seen <- n
	}()

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	svc.Close()
	if n := <-seen; n == 0 {
		t.Fatal("no step records reached the bus observer")
	}
}

func TestServiceHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sim.Episodes = 100
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRejectsBadFleet(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plants = []config.PlantConfig{{ID: "x", Type: "fusion", MaxMW: 10}}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown plant type")
	}
}
