// Package visualizer drives the particle field: it owns the field, the
// impact source, telemetry and a render backend, and runs the tick loop.
package visualizer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mpeula/musicvid.org/camera"
	"github.com/mpeula/musicvid.org/config"
	"github.com/mpeula/musicvid.org/impact"
	"github.com/mpeula/musicvid.org/particles"
	"github.com/mpeula/musicvid.org/telemetry"
)

// Options configures a Visualizer.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	OutputDir      string // Directory for CSV logs and config snapshot (empty = disabled)
	AudioPath      string // WAV file followed for the impact multiplier
	TracePath      string // CSV trace of multipliers, takes precedence over audio
	Play           bool   // Play audio through the speaker and follow what is heard
	StepsPerUpdate int

	// Source overrides trace, audio and constant selection.
	Source impact.Source

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Visualizer holds the complete run state.
type Visualizer struct {
	cfg  *config.Config
	opts Options

	field       *particles.Field
	source      impact.Source
	closeSource func() error

	// Tick-boundary mutations
	mu      sync.Mutex
	pending []func(*particles.Field)

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	depths    []float64

	// Presentation
	cam        *camera.Camera
	fade       *particles.ColorFade
	fadeTarget particles.Color
	graphics   *graphics

	// State
	tick           int32
	multiplier     float64
	paused         bool
	stepsPerUpdate int
}

// New builds a visualizer from cfg. The field is seeded from opts.Seed so
// headless runs are reproducible.
func New(cfg *config.Config, opts Options) (*Visualizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	src, closeSrc, err := newSource(cfg, opts)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		closeSrc()
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		closeSrc()
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	v := &Visualizer{
		cfg:            cfg,
		opts:           opts,
		field:          particles.New(cfg.Particles, particles.NewRandomSource(uint64(opts.Seed))),
		source:         src,
		closeSource:    closeSrc,
		collector:      telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow), cfg.Derived.TickDuration.Seconds()),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:         output,
		cam:            camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, cfg.Render.FovY, float32(cfg.Particles.CameraZPlane)),
		fade:           particles.NewColorFade(cfg.Particles.Color),
		fadeTarget:     cfg.Particles.Color,
		stepsPerUpdate: steps,
	}

	slog.Info("visualizer ready",
		"particles", v.field.Count(),
		"seed", opts.Seed,
		"source", sourceName(opts),
	)
	return v, nil
}

// Request queues a mutation to run at the next tick boundary. It is safe to
// call from any goroutine.
func (v *Visualizer) Request(fn func(*particles.Field)) {
	v.mu.Lock()
	v.pending = append(v.pending, fn)
	v.mu.Unlock()
}

// Resize queues a particle count change.
func (v *Visualizer) Resize(count int) {
	v.Request(func(f *particles.Field) {
		f.Resize(count)
		v.collector.RecordResize()
		slog.Info("field resized", "tick", v.tick, "particles", f.Count())
	})
}

// SetSizeMultiplier queues a size multiplier change.
func (v *Visualizer) SetSizeMultiplier(m float64) {
	v.Request(func(f *particles.Field) { f.SetSizeMultiplier(m) })
}

// Recolor queues a tint change. Backends crossfade to it.
func (v *Visualizer) Recolor(c particles.Color) {
	v.Request(func(f *particles.Field) { f.Recolor(c) })
}

func (v *Visualizer) applyRequests() {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()

	for _, fn := range pending {
		fn(v.field)
	}
}

// Step advances the field one tick and records it as one perf sample.
func (v *Visualizer) Step() {
	v.perf.StartTick()
	v.step()
	v.perf.EndTick()
}

// advance runs one update's worth of ticks. A paused update is still a tick
// boundary, so queued requests apply without moving the field.
func (v *Visualizer) advance() {
	if v.paused {
		v.applyRequests()
		return
	}
	for i := 0; i < v.stepsPerUpdate; i++ {
		v.step()
	}
}

// step runs one tick inside an open perf sample.
func (v *Visualizer) step() {
	v.applyRequests()

	v.perf.StartPhase(telemetry.PhaseImpact)
	v.multiplier = v.source.Next()

	v.perf.StartPhase(telemetry.PhaseSimulate)
	v.field.Update(v.multiplier)
	v.tick++

	v.perf.StartPhase(telemetry.PhaseTelemetry)
	v.collector.RecordMultiplier(v.multiplier)
	v.flushTelemetry()
}

// flushTelemetry emits a stats window when one is complete.
func (v *Visualizer) flushTelemetry() {
	if !v.collector.ShouldFlush(v.tick) {
		return
	}

	sample := telemetry.SampleField(v.field, v.depths)
	v.depths = sample.Depths
	stats := v.collector.Flush(v.tick, sample)
	perfStats := v.perf.Stats()

	if v.opts.StatsCallback != nil {
		v.opts.StatsCallback(stats)
	}

	if v.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := v.output.WriteField(stats); err != nil {
		slog.Error("failed to write field stats", "error", err)
	}
	if err := v.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// tint advances the color crossfade by dt seconds.
func (v *Visualizer) tint(dt float32) particles.Color {
	if c := v.field.Color(); c != v.fadeTarget {
		v.fadeTarget = c
		v.fade.Set(c, v.cfg.Render.ColorFade)
	}
	return v.fade.Update(dt)
}

// exhausted reports whether a finite source has run out.
func (v *Visualizer) exhausted() bool {
	d, ok := v.source.(interface{ Done() bool })
	return ok && d.Done()
}

// Field returns the simulated field. Only touch it between ticks.
func (v *Visualizer) Field() *particles.Field {
	return v.field
}

// Tick returns the number of completed ticks.
func (v *Visualizer) Tick() int32 {
	return v.tick
}

// Multiplier returns the impact multiplier applied on the last tick.
func (v *Visualizer) Multiplier() float64 {
	return v.multiplier
}

// Close releases the source, graphics resources and output files.
func (v *Visualizer) Close() error {
	if v.graphics != nil {
		v.graphics.unload()
	}
	srcErr := v.closeSource()
	if err := v.output.Close(); err != nil {
		return err
	}
	return srcErr
}
