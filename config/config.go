package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridsim/core/episode"
	"github.com/kilianp07/gridsim/core/forecast"
	"github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/reward"
)

// Policy names accepted by SimConfig.
const (
	PolicyMeritOrder = "merit"
	PolicyLP         = "lp"
)

// SimConfig drives the headless runner.
type SimConfig struct {
	// Episodes is the number of episodes to run.
	Episodes int `json:"episodes"`
	// Seed of the first episode; episode i uses Seed+i.
	Seed int64 `json:"seed"`
	// Policy selects the baseline controller: "merit" or "lp".
	Policy string `json:"policy"`
	// Parallelism is the number of independent instances driven
	// concurrently. Instances share nothing but the event bus.
	Parallelism int `json:"parallelism"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.Episodes == 0 {
		c.Episodes = 1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Policy == "" {
		c.Policy = PolicyMeritOrder
	}
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
}

// Validate checks mandatory fields.
func (c SimConfig) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be at least 1")
	}
	if c.Policy != PolicyMeritOrder && c.Policy != PolicyLP {
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1")
	}
	return nil
}

// ExportConfig selects an optional step-record export file.
type ExportConfig struct {
	// Format is "csv", "json" or empty to disable export.
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Validate checks the format/path combination.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case "", "csv", "json":
	default:
		return fmt.Errorf("unknown export format %q", c.Format)
	}
	if c.Format != "" && c.Path == "" {
		return fmt.Errorf("export path is required when a format is set")
	}
	return nil
}

// Config is the root configuration of the simulator.
type Config struct {
	Plants   []PlantConfig   `json:"plants"`
	Forecast forecast.Config `json:"forecast"`
	Episode  episode.Config  `json:"episode"`
	Reward   reward.Weights  `json:"reward"`
	Metrics  metrics.Config  `json:"metrics"`
	Sim      SimConfig       `json:"sim"`
	Export   ExportConfig    `json:"export"`
}

// SetDefaults fills every section, including the reference fleet when no
// plants are configured.
func (c *Config) SetDefaults() {
	if len(c.Plants) == 0 {
		c.Plants = DefaultPlants()
	}
	c.Forecast.SetDefaults()
	c.Episode.SetDefaults()
	c.Reward.SetDefaults()
	c.Metrics.SetDefaults()
	c.Sim.SetDefaults()
}

// Validate checks every section. Plant conversion errors surface here so a
// malformed fleet fails at load time, before any episode starts.
func (c *Config) Validate() error {
	if _, err := Specs(c.Plants); err != nil {
		return err
	}
	if err := c.Forecast.Validate(); err != nil {
		return err
	}
	if err := c.Episode.Validate(); err != nil {
		return err
	}
	if err := c.Reward.Validate(); err != nil {
		return err
	}
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// Default returns a fully defaulted configuration without reading a file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads a YAML or JSON configuration file, applies GS_ environment
// overrides (GS_SECTION__KEY maps to section.key), defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("GS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
