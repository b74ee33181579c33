package telemetry

import "github.com/mpeula/musicvid.org/particles"

// FieldSample is the field state the driver hands to Flush.
type FieldSample struct {
	Count    int
	Recycled uint64 // Field.Recycled(); resets on reinitialize
	Skipped  uint64
	Depths   []float64
}

// SampleField collects the counters and the forward-axis position of every
// simulated slot. dst is reused when large enough.
func SampleField(f *particles.Field, dst []float64) FieldSample {
	v := f.View()
	slots := v.Len() / 2
	if cap(dst) < slots {
		dst = make([]float64, slots)
	}
	dst = dst[:slots]
	for i := range dst {
		_, _, z := v.Position(i)
		dst[i] = float64(z)
	}
	return FieldSample{
		Count:    f.Count(),
		Recycled: f.Recycled(),
		Skipped:  f.Skipped(),
		Depths:   dst,
	}
}

// Collector accumulates per-tick field data within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	recycledBase    uint64
	skippedBase     uint64
	resizes         int
	multipliers     []float64
}

// NewCollector creates a new stats collector.
// windowTicks: ticks per window; dt: seconds per tick.
func NewCollector(windowTicks int32, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		dt:                  dt,
		multipliers:         make([]float64, 0, windowTicks),
	}
}

// RecordMultiplier records the impact multiplier applied this tick.
func (c *Collector) RecordMultiplier(m float64) {
	c.multipliers = append(c.multipliers, m)
}

// RecordResize records a reinitialization. The field's counters restart
// from zero, so the baselines do too.
func (c *Collector) RecordResize() {
	c.resizes++
	c.recycledBase = 0
	c.skippedBase = 0
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets for the next window.
func (c *Collector) Flush(currentTick int32, sample FieldSample) WindowStats {
	recycled := int(sample.Recycled - c.recycledBase)
	skipped := sample.Skipped - c.skippedBase

	elapsed := float64(currentTick-c.windowStartTick) * c.dt
	var rate float64
	if elapsed > 0 {
		rate = float64(recycled) / elapsed
	}

	depthMean, depthStd, depthP50, depthP90 := ComputeDepthStats(sample.Depths)
	multMean, multMin, multMax := ComputeMultiplierStats(c.multipliers)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Particles:       sample.Count,
		Recycled:        recycled,
		RecycleRate:     rate,
		Resizes:         c.resizes,
		Skipped:         skipped,
		DepthMean:       depthMean,
		DepthStd:        depthStd,
		DepthP50:        depthP50,
		DepthP90:        depthP90,
		MultMean:        multMean,
		MultMin:         multMin,
		MultMax:         multMax,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.recycledBase = sample.Recycled
	c.skippedBase = sample.Skipped
	c.resizes = 0
	c.multipliers = c.multipliers[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
