// Package particles simulates an audio-reactive field of point sprites that
// stream from the origin toward a viewer at the camera Z-plane and are
// recycled when they reach it.
//
// The field simulates N/2 slots and packs them into a Buffer of N entries,
// mirroring every slot across the X axis. A Field is single-threaded: Update,
// Resize and Initialize must be serialized by the caller, and the Buffer may
// only be read between calls.
package particles

import (
	"errors"
	"fmt"
	"math"
)

// Range is a closed sampling interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp interpolates between Min and Max. t is not clamped.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// Sample draws a value from the range.
func (r Range) Sample(rng RandomSource) float64 {
	return rng.Uniform(r.Min, r.Max)
}

// Config holds the tunables of a Field.
type Config struct {
	// Count is the number of rendered particles. It is forced even.
	Count int `yaml:"count"`
	// BaseSpeed scales every particle's forward speed.
	BaseSpeed float64 `yaml:"base_speed"`
	// MinBaseSpeed is the floor of the per-tick forward step.
	MinBaseSpeed float64 `yaml:"min_base_speed"`
	// SizeMult scales each particle's stored base size.
	SizeMult float64 `yaml:"size_mult"`
	Color    Color   `yaml:"color"`

	Size    Range `yaml:"size"`
	Opacity Range `yaml:"opacity"`
	// Radius bounds the lateral spawn cone radius at the camera plane.
	Radius         Range `yaml:"radius"`
	SpeedMult      Range `yaml:"speed_mult"`
	PhaseAmplitude Range `yaml:"phase_amplitude"`
	PhaseSpeed     Range `yaml:"phase_speed"`
	// PhaseAmplitudeMult and PhaseSpeedMult are interpolated by the impact
	// multiplier every tick.
	PhaseAmplitudeMult Range `yaml:"phase_amplitude_mult"`
	PhaseSpeedMult     Range `yaml:"phase_speed_mult"`

	CameraZPlane  float64 `yaml:"camera_z_plane"`
	DespawnBuffer float64 `yaml:"despawn_buffer"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Count:              1200,
		BaseSpeed:          1.0,
		MinBaseSpeed:       0.15,
		SizeMult:           1.0,
		Color:              White,
		Size:               Range{Min: 8, Max: 13},
		Opacity:            Range{Min: 0.9, Max: 1},
		Radius:             Range{Min: 10, Max: 120},
		SpeedMult:          Range{Min: 1.1, Max: 1.45},
		PhaseAmplitude:     Range{Min: 0.05, Max: 0.4},
		PhaseSpeed:         Range{Min: 0.1, Max: 0.25},
		PhaseAmplitudeMult: Range{Min: 0.1, Max: 1},
		PhaseSpeedMult:     Range{Min: 0.025, Max: 0.4},
		CameraZPlane:       200,
		DespawnBuffer:      0,
	}
}

// Validate reports degenerate ranges and an unusable camera plane.
func (c Config) Validate() error {
	var errs []error
	ranges := []struct {
		name string
		r    Range
	}{
		{"size", c.Size},
		{"opacity", c.Opacity},
		{"radius", c.Radius},
		{"speed_mult", c.SpeedMult},
		{"phase_amplitude", c.PhaseAmplitude},
		{"phase_speed", c.PhaseSpeed},
		{"phase_amplitude_mult", c.PhaseAmplitudeMult},
		{"phase_speed_mult", c.PhaseSpeedMult},
	}
	for _, nr := range ranges {
		if nr.r.Min > nr.r.Max {
			errs = append(errs, fmt.Errorf("%s: min %v > max %v", nr.name, nr.r.Min, nr.r.Max))
		}
	}
	if c.CameraZPlane <= 0 {
		errs = append(errs, fmt.Errorf("camera_z_plane: must be positive, got %v", c.CameraZPlane))
	}
	return errors.Join(errs...)
}

// EvenCount normalizes a particle count: negatives become 0 and odd counts
// round up, except math.MaxInt which rounds down.
func EvenCount(n int) int {
	switch {
	case n < 0:
		return 0
	case n == math.MaxInt:
		return n - 1
	}
	return n + n%2
}

// Field owns the particle records and the packed buffer.
type Field struct {
	cfg Config
	rng RandomSource

	buf       *Buffer
	records   []Record
	live      []bool
	baseSizes []float32

	recycled uint64
	skipped  uint64
}

// New creates a field and initializes it. It panics if cfg is invalid or rng
// is nil.
func New(cfg Config, rng RandomSource) *Field {
	if rng == nil {
		panic("particles: nil RandomSource")
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("particles: invalid config: %v", err))
	}
	f := &Field{cfg: cfg, rng: rng}
	f.Initialize()
	return f
}

// Initialize discards all state and reallocates the buffer and records.
// Every slot is spawned fresh and projected forward by a random distance.
func (f *Field) Initialize() {
	f.cfg.Count = EvenCount(f.cfg.Count)
	n := f.cfg.Count
	f.recycled = 0
	f.skipped = 0
	half := n / 2

	f.buf = newBuffer(n)
	f.records = make([]Record, half)
	f.live = make([]bool, half)
	f.baseSizes = make([]float32, half)

	for i := 0; i < half; i++ {
		f.buf.setPosition(i, 0, 0, 0)
		f.baseSizes[i] = float32(f.cfg.Size.Sample(f.rng))
		f.buf.setAlpha(i, float32(f.cfg.Opacity.Sample(f.rng)))
		f.records[i] = f.spawn()
		f.live[i] = true
	}
	f.applySizes()

	// Burn-in: one advance per slot with a random stand-in multiplier and
	// unit speed, so slots start spread along the forward axis.
	for i := 0; i < half; i++ {
		f.advance(i, f.rng.Uniform(0, f.cfg.CameraZPlane), true)
	}

	f.buf.MarkDirty(ChannelPosition)
	f.buf.MarkDirty(ChannelSize)
	f.buf.MarkDirty(ChannelAlpha)
}

// Update advances every slot by one tick under the impact multiplier.
func (f *Field) Update(multiplier float64) {
	for i := range f.records {
		f.advance(i, multiplier, false)
	}
	f.buf.MarkDirty(ChannelPosition)
}

// advance moves slot i one step. With unitSpeed the record's own speed
// multiplier is replaced by 1.
func (f *Field) advance(i int, multiplier float64, unitSpeed bool) {
	if !f.live[i] {
		f.skipped++
		return
	}
	r := &f.records[i]

	speed := r.Speed
	if unitSpeed {
		speed = 1
	}
	adjusted := math.Max(speed*f.cfg.BaseSpeed*multiplier, f.cfg.MinBaseSpeed)

	ampMult := f.cfg.PhaseAmplitudeMult.Lerp(multiplier)
	phaseX := math.Sin(2*math.Pi*r.Phase.X) * r.PhaseAmplitude.X * ampMult
	phaseY := math.Sin(2*math.Pi*r.Phase.Y) * r.PhaseAmplitude.Y * ampMult

	ox, oy, oz := f.buf.positionAt(i)
	x := float64(ox) + r.Trajectory.X*adjusted + phaseX
	y := float64(oy) + r.Trajectory.Y*adjusted + phaseY
	z := float64(oz) + adjusted

	if z+f.cfg.DespawnBuffer > f.cfg.CameraZPlane {
		// The fresh record starts at phase zero.
		f.reseedSlot(i)
		return
	}
	f.buf.setPosition(i, float32(x), float32(y), float32(z))

	speedMult := f.cfg.PhaseSpeedMult.Lerp(multiplier)
	r.Phase.X = wrapUnit(r.Phase.X + r.PhaseSpeed.X*speedMult)
	r.Phase.Y = wrapUnit(r.Phase.Y + r.PhaseSpeed.Y*speedMult)
}

// reseedSlot recycles slot i in place: the position returns to the origin
// and the record is replaced by a fresh sample. There is no observable
// moment without a record.
func (f *Field) reseedSlot(i int) {
	f.buf.setPosition(i, 0, 0, 0)
	f.records[i] = f.spawn()
	f.live[i] = true
	f.recycled++
}

// spawn samples a fresh record. Trajectories cover the forward half-cone
// and reach the sampled radius at the camera plane.
func (f *Field) spawn() Record {
	radius := f.cfg.Radius.Sample(f.rng)
	theta := f.rng.Uniform(-math.Pi/2, math.Pi/2)
	return Record{
		Trajectory: Vec2{
			X: radius * math.Cos(theta) / f.cfg.CameraZPlane,
			Y: radius * math.Sin(theta) / f.cfg.CameraZPlane,
		},
		Speed: f.cfg.SpeedMult.Sample(f.rng),
		PhaseAmplitude: Vec2{
			X: f.cfg.PhaseAmplitude.Sample(f.rng),
			Y: f.cfg.PhaseAmplitude.Sample(f.rng),
		},
		PhaseSpeed: Vec2{
			X: f.cfg.PhaseSpeed.Sample(f.rng),
			Y: f.cfg.PhaseSpeed.Sample(f.rng),
		},
	}
}

// Resize changes the particle count and reinitializes everything. It is not
// incremental; call it between ticks only.
func (f *Field) Resize(count int) {
	f.cfg.Count = EvenCount(count)
	f.Initialize()
}

// SetSizeMultiplier rescales every rendered size from its stored base size.
func (f *Field) SetSizeMultiplier(m float64) {
	f.cfg.SizeMult = m
	f.applySizes()
}

func (f *Field) applySizes() {
	m := float32(f.cfg.SizeMult)
	for i, base := range f.baseSizes {
		f.buf.setSize(i, base*m)
	}
	f.buf.MarkDirty(ChannelSize)
}

// Recolor sets the tint uniform. Particle state is unaffected.
func (f *Field) Recolor(c Color) {
	f.cfg.Color = c
}

// Color returns the tint uniform.
func (f *Field) Color() Color {
	return f.cfg.Color
}

// SizeMultiplier returns the current size multiplier.
func (f *Field) SizeMultiplier() float64 {
	return f.cfg.SizeMult
}

// Count returns the number of rendered particles (always even).
func (f *Field) Count() int {
	return f.cfg.Count
}

// Slots returns the number of simulated slots, Count()/2.
func (f *Field) Slots() int {
	return len(f.records)
}

// Record returns a copy of slot i's record and whether the slot is live.
func (f *Field) Record(i int) (Record, bool) {
	return f.records[i], f.live[i]
}

// BaseSize returns slot i's size before the size multiplier.
func (f *Field) BaseSize(i int) float32 {
	return f.baseSizes[i]
}

// Config returns the field's current configuration, including the
// normalized count.
func (f *Field) Config() Config {
	return f.cfg
}

// View returns the read-only buffer view for the render consumer.
func (f *Field) View() View {
	return f.buf.View()
}

// Recycled returns how many slots have been reseeded since the last
// Initialize, burn-in included.
func (f *Field) Recycled() uint64 {
	return f.recycled
}

// Skipped returns how many advances hit a slot without a record. Any
// non-zero value is a logic error.
func (f *Field) Skipped() uint64 {
	return f.skipped
}
