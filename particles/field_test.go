package particles

import (
	"math"
	"strings"
	"testing"
)

// midSource always returns the middle of the requested range.
type midSource struct{}

func (midSource) Uniform(min, max float64) float64 {
	return (min + max) / 2
}

func testConfig(count int) Config {
	cfg := DefaultConfig()
	cfg.Count = count
	return cfg
}

func checkMirror(t *testing.T, f *Field, tick int) {
	t.Helper()
	v := f.View()
	half := v.Len() / 2
	for i := 0; i < half; i++ {
		x, y, z := v.Position(i)
		mx, my, mz := v.Position(i + half)
		if mx != -x || my != y || mz != z {
			t.Fatalf("tick %d slot %d: mirror (%v,%v,%v) of (%v,%v,%v)", tick, i, mx, my, mz, x, y, z)
		}
		if v.Size(i+half) != v.Size(i) {
			t.Fatalf("tick %d slot %d: size %v != %v", tick, i, v.Size(i+half), v.Size(i))
		}
		if v.Alpha(i+half) != v.Alpha(i) {
			t.Fatalf("tick %d slot %d: alpha %v != %v", tick, i, v.Alpha(i+half), v.Alpha(i))
		}
	}
}

func TestEvenCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{1, 2},
		{2, 2},
		{5, 6},
		{1199, 1200},
		{1200, 1200},
		{math.MaxInt, math.MaxInt - 1},
		{math.MaxInt - 1, math.MaxInt - 1},
	}
	for _, tt := range tests {
		if got := EvenCount(tt.in); got != tt.want {
			t.Errorf("EvenCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewFieldCountIsEven(t *testing.T) {
	for _, c := range []int{-4, 0, 1, 2, 7, 1199, 1200} {
		f := New(testConfig(c), NewRandomSource(1))
		want := EvenCount(c)
		if f.Count() != want {
			t.Errorf("count %d: Count() = %d, want %d", c, f.Count(), want)
		}
		if f.View().Len() != want {
			t.Errorf("count %d: View().Len() = %d, want %d", c, f.View().Len(), want)
		}
		if f.Slots() != want/2 {
			t.Errorf("count %d: Slots() = %d, want %d", c, f.Slots(), want/2)
		}
	}
}

func TestAdvanceMatchesHandComputedSteps(t *testing.T) {
	cfg := Config{
		Count:              2,
		BaseSpeed:          1,
		MinBaseSpeed:       0.15,
		SizeMult:           1,
		Color:              White,
		Size:               Range{Min: 10, Max: 10},
		Opacity:            Range{Min: 1, Max: 1},
		Radius:             Range{Min: 100, Max: 100},
		SpeedMult:          Range{Min: 1, Max: 1},
		PhaseAmplitude:     Range{Min: 0.5, Max: 0.5},
		PhaseSpeed:         Range{Min: 0.25, Max: 0.25},
		PhaseAmplitudeMult: Range{Min: 0, Max: 1},
		PhaseSpeedMult:     Range{Min: 0, Max: 1},
		CameraZPlane:       200,
	}
	f := New(cfg, midSource{})

	// Burn-in uses a multiplier of 100 and unit speed: the slot moves
	// 100 forward along trajectory (0.5, 0).
	steps := []struct{ x, y, z float64 }{
		{50, 0, 100},
		{50.5, 0, 101},
		{51.5, 0.5, 102},
		{52.0, 0.5, 103},
		{52.0, 0, 104},
	}
	for i, want := range steps {
		if i > 0 {
			f.Update(1)
		}
		x, y, z := f.View().Position(0)
		if math.Abs(float64(x)-want.x) > 1e-4 || math.Abs(float64(y)-want.y) > 1e-4 || math.Abs(float64(z)-want.z) > 1e-4 {
			t.Errorf("step %d: got (%v, %v, %v), want (%v, %v, %v)", i, x, y, z, want.x, want.y, want.z)
		}
		checkMirror(t, f, i)
	}
}

func TestMirrorInvariantEveryTick(t *testing.T) {
	f := New(testConfig(300), NewRandomSource(7))
	checkMirror(t, f, 0)
	multipliers := []float64{0, 0.5, 1, 2.5, 4}
	for tick := 1; tick <= 600; tick++ {
		f.Update(multipliers[tick%len(multipliers)])
		checkMirror(t, f, tick)
	}
}

func TestPhaseStaysInUnitInterval(t *testing.T) {
	f := New(testConfig(200), NewRandomSource(11))
	for tick := 0; tick < 500; tick++ {
		f.Update(float64(tick%7) * 0.8)
		for i := 0; i < f.Slots(); i++ {
			r, _ := f.Record(i)
			if r.Phase.X < 0 || r.Phase.X >= 1 || r.Phase.Y < 0 || r.Phase.Y >= 1 {
				t.Fatalf("tick %d slot %d: phase %+v outside [0,1)", tick, i, r.Phase)
			}
		}
	}
}

func TestSpawnedTrajectoriesStayInForwardHalfCone(t *testing.T) {
	cfg := testConfig(400)
	cfg.BaseSpeed = 20 // recycle often
	f := New(cfg, NewRandomSource(3))
	for tick := 0; tick < 300; tick++ {
		f.Update(1)
		for i := 0; i < f.Slots(); i++ {
			r, _ := f.Record(i)
			if r.Trajectory.X < 0 {
				t.Fatalf("tick %d slot %d: trajectory.x = %v", tick, i, r.Trajectory.X)
			}
		}
	}
	if f.Recycled() == 0 {
		t.Fatal("expected recycles")
	}
}

func TestSlotsNeverObservedBeyondThreshold(t *testing.T) {
	cfg := testConfig(200)
	cfg.DespawnBuffer = 25
	cfg.BaseSpeed = 3
	f := New(cfg, NewRandomSource(5))
	limit := float32(cfg.CameraZPlane - cfg.DespawnBuffer)
	for tick := 0; tick < 400; tick++ {
		f.Update(1.5)
		v := f.View()
		for i := 0; i < f.Slots(); i++ {
			if _, _, z := v.Position(i); z > limit {
				t.Fatalf("tick %d slot %d: z = %v beyond %v", tick, i, z, limit)
			}
		}
	}
	if f.Skipped() != 0 {
		t.Errorf("Skipped() = %d, want 0", f.Skipped())
	}
}

func TestDeterministicWithSameSeed(t *testing.T) {
	run := func() Snapshot {
		f := New(testConfig(500), NewRandomSource(42))
		for i := 0; i < 250; i++ {
			f.Update(1.0)
		}
		return f.View().Snapshot()
	}
	a, b := run(), run()

	equal := func(name string, x, y []float32) {
		if len(x) != len(y) {
			t.Fatalf("%s: length %d != %d", name, len(x), len(y))
		}
		for i := range x {
			if math.Float32bits(x[i]) != math.Float32bits(y[i]) {
				t.Fatalf("%s[%d]: %v != %v", name, i, x[i], y[i])
			}
		}
	}
	equal("position", a.Position, b.Position)
	equal("size", a.Size, b.Size)
	equal("alpha", a.Alpha, b.Alpha)
}

// Two live slots travel to the camera plane and reset to the origin within
// the same update that would carry them past it.
func TestRecyclingAtCameraPlane(t *testing.T) {
	cfg := testConfig(4)
	cfg.Radius = Range{Min: 10, Max: 10}
	cfg.CameraZPlane = 200
	cfg.DespawnBuffer = 0
	cfg.BaseSpeed = 1
	f := New(cfg, NewRandomSource(9))

	if f.Slots() != 2 {
		t.Fatalf("Slots() = %d, want 2", f.Slots())
	}

	resets := 0
	for tick := 0; tick < 1000; tick++ {
		before := make([]Record, f.Slots())
		prevZ := make([]float32, f.Slots())
		for i := range before {
			before[i], _ = f.Record(i)
			_, _, prevZ[i] = f.View().Position(i)
		}

		f.Update(1.0)

		for i := range before {
			_, _, z := f.View().Position(i)
			step := math.Max(before[i].Speed*cfg.BaseSpeed, cfg.MinBaseSpeed)
			if z == 0 {
				if float64(prevZ[i])+step <= cfg.CameraZPlane {
					t.Fatalf("tick %d slot %d: reset from z=%v with step %v", tick, i, prevZ[i], step)
				}
				r, _ := f.Record(i)
				if r.Phase != (Vec2{}) {
					t.Errorf("tick %d slot %d: reseeded phase %+v, want zero", tick, i, r.Phase)
				}
				resets++
				continue
			}
			if z <= prevZ[i] {
				t.Fatalf("tick %d slot %d: z went from %v to %v", tick, i, prevZ[i], z)
			}
			if z > float32(cfg.CameraZPlane) {
				t.Fatalf("tick %d slot %d: z = %v beyond camera plane", tick, i, z)
			}
		}

		for i := 0; i < f.Slots(); i++ {
			r, _ := f.Record(i)
			if got := math.Hypot(r.Trajectory.X, r.Trajectory.Y); math.Abs(got-10.0/200) > 1e-9 {
				t.Fatalf("slot %d: |trajectory| = %v, want %v", i, got, 10.0/200)
			}
		}
	}
	if resets == 0 {
		t.Fatal("expected at least one reset in 1000 ticks")
	}
}

func TestSizeMultiplierDoublesSizesOnly(t *testing.T) {
	f := New(testConfig(100), NewRandomSource(21))
	for i := 0; i < 10; i++ {
		f.Update(1)
	}
	before := f.View().Snapshot()
	records := make([]Record, f.Slots())
	for i := range records {
		records[i], _ = f.Record(i)
	}
	f.View().TakeDirty(ChannelSize)

	f.SetSizeMultiplier(2.0)

	after := f.View().Snapshot()
	for i := range before.Size {
		if after.Size[i] != 2*before.Size[i] {
			t.Errorf("size[%d] = %v, want %v", i, after.Size[i], 2*before.Size[i])
		}
	}
	for i := range before.Position {
		if after.Position[i] != before.Position[i] {
			t.Fatalf("position[%d] changed: %v -> %v", i, before.Position[i], after.Position[i])
		}
	}
	for i := range records {
		if r, _ := f.Record(i); r != records[i] {
			t.Fatalf("record %d changed: %+v -> %+v", i, records[i], r)
		}
	}
	if !f.View().Dirty(ChannelSize) {
		t.Error("size channel not marked dirty")
	}
	if f.SizeMultiplier() != 2.0 {
		t.Errorf("SizeMultiplier() = %v, want 2", f.SizeMultiplier())
	}
}

func TestResizeDiscardsState(t *testing.T) {
	f := New(testConfig(4), NewRandomSource(13))
	for i := 0; i < 20; i++ {
		f.Update(1)
	}
	old := make([]Record, f.Slots())
	for i := range old {
		old[i], _ = f.Record(i)
	}
	oldView := f.View()

	f.Resize(5)

	if f.Count() != 6 {
		t.Fatalf("Count() = %d, want 6", f.Count())
	}
	if f.Slots() != 3 || f.View().Len() != 6 {
		t.Fatalf("Slots() = %d, Len() = %d, want 3 and 6", f.Slots(), f.View().Len())
	}
	for i := 0; i < f.Slots(); i++ {
		r, live := f.Record(i)
		if !live {
			t.Errorf("slot %d not live after resize", i)
		}
		for _, o := range old {
			if r.Trajectory == o.Trajectory {
				t.Errorf("slot %d kept trajectory %+v from before resize", i, r.Trajectory)
			}
		}
	}
	if oldView.Len() != 4 {
		t.Errorf("previous view length = %d, want 4 (buffer replaced, not grown)", oldView.Len())
	}
	for _, c := range []Channel{ChannelPosition, ChannelSize, ChannelAlpha} {
		if !f.View().Dirty(c) {
			t.Errorf("%s not dirty after resize", c)
		}
	}
	checkMirror(t, f, 0)
}

func TestZeroMultiplierUsesSpeedFloor(t *testing.T) {
	cfg := testConfig(2)
	cfg.PhaseAmplitude = Range{}
	f := New(cfg, NewRandomSource(2))
	_, _, z0 := f.View().Position(0)
	if float64(z0)+cfg.MinBaseSpeed+cfg.DespawnBuffer > cfg.CameraZPlane {
		t.Skip("slot burned in next to the camera plane")
	}
	f.Update(0)
	_, _, z1 := f.View().Position(0)
	if d := float64(z1 - z0); math.Abs(d-cfg.MinBaseSpeed) > 1e-4 {
		t.Errorf("step at zero multiplier = %v, want %v", d, cfg.MinBaseSpeed)
	}
}

func TestMultiplierIsNotClamped(t *testing.T) {
	r := Range{Min: 0.1, Max: 1}
	if got := r.Lerp(3); math.Abs(got-2.8) > 1e-12 {
		t.Errorf("Lerp(3) = %v, want 2.8", got)
	}
	if got := r.Lerp(-1); math.Abs(got-(-0.8)) > 1e-12 {
		t.Errorf("Lerp(-1) = %v, want -0.8", got)
	}
}

func TestInitialAlphaAndSizeWithinRanges(t *testing.T) {
	cfg := testConfig(300)
	cfg.SizeMult = 1
	f := New(cfg, NewRandomSource(17))
	v := f.View()
	for i := 0; i < v.Len(); i++ {
		a := float64(v.Alpha(i))
		if a < cfg.Opacity.Min-1e-6 || a > cfg.Opacity.Max+1e-6 {
			t.Fatalf("alpha[%d] = %v outside %+v", i, a, cfg.Opacity)
		}
		s := float64(v.Size(i))
		if s < cfg.Size.Min-1e-5 || s > cfg.Size.Max+1e-5 {
			t.Fatalf("size[%d] = %v outside %+v", i, s, cfg.Size)
		}
	}
}

func TestRecolorLeavesBufferAlone(t *testing.T) {
	f := New(testConfig(50), NewRandomSource(4))
	before := f.View().Snapshot()
	for _, c := range []Channel{ChannelPosition, ChannelSize, ChannelAlpha} {
		f.View().TakeDirty(c)
	}

	red := Color{R: 1}
	f.Recolor(red)

	if f.Color() != red {
		t.Errorf("Color() = %+v, want %+v", f.Color(), red)
	}
	after := f.View().Snapshot()
	for i := range before.Position {
		if before.Position[i] != after.Position[i] {
			t.Fatal("recolor changed positions")
		}
	}
	for _, c := range []Channel{ChannelPosition, ChannelSize, ChannelAlpha} {
		if f.View().Dirty(c) {
			t.Errorf("recolor dirtied %s", c)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Radius = Range{Min: 50, Max: 10}
	cfg.PhaseSpeed = Range{Min: 1, Max: 0}
	cfg.CameraZPlane = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"radius", "phase_speed", "camera_z_plane"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestNewPanicsOnDegenerateRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	cfg := DefaultConfig()
	cfg.Size = Range{Min: 2, Max: 1}
	New(cfg, NewRandomSource(1))
}

func TestNewPanicsOnNilSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New(DefaultConfig(), nil)
}

func BenchmarkFieldUpdate(b *testing.B) {
	f := New(testConfig(1200), NewRandomSource(1))
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		f.Update(1.0)
	}
}
