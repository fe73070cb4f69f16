package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/experiment"
)

const (
	DefaultFrameMs  = 1000.0 / 60
	DefaultDuration = 10.0
	DefaultSpeed    = 1.0
	DefaultWidth    = experiment.DefaultWidth
	DefaultHeight   = experiment.DefaultHeight
)

type Config struct {
	Kind     string             `yaml:"kind"`
	FrameMs  float64            `yaml:"frame_ms"`
	Duration float64            `yaml:"duration"`
	Speed    float64            `yaml:"speed"`
	Seed     int64              `yaml:"seed"`
	Width    float64            `yaml:"width"`
	Height   float64            `yaml:"height"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Kind:     dynamo.KindPendulum.String(),
		FrameMs:  DefaultFrameMs,
		Duration: DefaultDuration,
		Speed:    DefaultSpeed,
		Seed:     1,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Params:   make(map[string]float64),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone copies the config including its params map.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	return &out
}

// Apply layers params over the config's own; later values win.
func (c *Config) Apply(params map[string]float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		c.Params[k] = v
	}
}

// Experiment resolves the kind and converts to a runnable config.
func (c *Config) Experiment() (experiment.Config, error) {
	kind, err := dynamo.ParseKind(c.Kind)
	if err != nil {
		return experiment.Config{}, fmt.Errorf("config kind %q: %w", c.Kind, err)
	}
	return experiment.Config{
		Kind:          kind,
		FrameMs:       c.FrameMs,
		Duration:      c.Duration,
		Speed:         c.Speed,
		Seed:          c.Seed,
		Width:         c.Width,
		Height:        c.Height,
		Params:        c.Params,
		ValidateState: true,
	}, nil
}
