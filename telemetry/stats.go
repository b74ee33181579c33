package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated field statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Field size at window end
	Particles int `csv:"particles"`

	// Lifecycle during window
	Recycled    int     `csv:"recycled"`
	RecycleRate float64 `csv:"recycle_rate"` // Reseeds per second
	Resizes     int     `csv:"resizes"`
	Skipped     uint64  `csv:"skipped"` // Advances on empty slots; non-zero is a bug

	// Forward-axis distribution of simulated slots (sampled at window end)
	DepthMean float64 `csv:"depth_mean"`
	DepthStd  float64 `csv:"depth_std"`
	DepthP50  float64 `csv:"depth_p50"`
	DepthP90  float64 `csv:"depth_p90"`

	// Impact multiplier over the window
	MultMean float64 `csv:"mult_mean"`
	MultMin  float64 `csv:"mult_min"`
	MultMax  float64 `csv:"mult_max"`
}

// ComputeDepthStats calculates mean, std and percentiles of depth values.
// values is reordered in place.
func ComputeDepthStats(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	if len(values) == 1 {
		return values[0], 0, values[0], values[0]
	}
	mean, std = stat.MeanStdDev(values, nil)

	sort.Float64s(values)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	return mean, std, p50, p90
}

// ComputeMultiplierStats returns mean, min and max of the multipliers.
func ComputeMultiplierStats(values []float64) (mean, lo, hi float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	return stat.Mean(values, nil), floats.Min(values), floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("recycled", s.Recycled),
		slog.Float64("recycle_rate", s.RecycleRate),
		slog.Int("resizes", s.Resizes),
		slog.Uint64("skipped", s.Skipped),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_std", s.DepthStd),
		slog.Float64("depth_p50", s.DepthP50),
		slog.Float64("depth_p90", s.DepthP90),
		slog.Float64("mult_mean", s.MultMean),
		slog.Float64("mult_min", s.MultMin),
		slog.Float64("mult_max", s.MultMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("field", "stats", s)
	if s.Skipped > 0 {
		slog.Warn("advances on empty slots", "count", s.Skipped)
	}
}
