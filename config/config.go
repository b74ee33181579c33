// Package config provides configuration loading and access for the visualizer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mpeula/musicvid.org/particles"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig     `yaml:"screen"`
	Particles particles.Config `yaml:"particles"`
	Impact    ImpactConfig     `yaml:"impact"`
	Render    RenderConfig     `yaml:"render"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ImpactConfig holds settings for the impact multiplier producers.
type ImpactConfig struct {
	Gain      float64 `yaml:"gain"`       // Envelope gain applied to block RMS
	Decay     float64 `yaml:"decay"`      // Envelope smoothing, 0 = none
	Constant  float64 `yaml:"constant"`   // Multiplier used when no audio or trace is given
	TraceLoop bool    `yaml:"trace_loop"` // Restart traces when they run out
}

// RenderConfig holds render backend settings.
type RenderConfig struct {
	FovY       float32         `yaml:"fov_y"`       // Vertical field of view in degrees
	PointScale float32         `yaml:"point_scale"` // Screen size = point_scale * size / distance
	Texture    string          `yaml:"texture"`     // Sprite image path, empty = generated
	ColorFade  float32         `yaml:"color_fade"`  // Seconds to crossfade on recolor
	Background particles.Color `yaml:"background"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per field stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ParticleCount int           // Particles.Count forced even
	TickDuration  time.Duration // 1 / Screen.TargetFPS
	ScreenW32     float32       // Screen.Width as float32
	ScreenH32     float32       // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return parse(data)
}

// parse overlays user YAML (may be nil) on the embedded defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in file
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Particles.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("particles: %w", err))
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen: size %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Screen.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("screen: target_fps %d", c.Screen.TargetFPS))
	}
	if c.Impact.Decay < 0 || c.Impact.Decay >= 1 {
		errs = append(errs, fmt.Errorf("impact: decay %v outside [0, 1)", c.Impact.Decay))
	}
	if c.Render.FovY <= 0 || c.Render.FovY >= 180 {
		errs = append(errs, fmt.Errorf("render: fov_y %v", c.Render.FovY))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Particles.Count = particles.EvenCount(c.Particles.Count)
	c.Derived.ParticleCount = c.Particles.Count
	c.Derived.TickDuration = time.Second / time.Duration(c.Screen.TargetFPS)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = c.Screen.TargetFPS
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = c.Screen.TargetFPS
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
