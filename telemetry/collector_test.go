package telemetry

import (
	"testing"

	"github.com/mpeula/musicvid.org/particles"
)

func TestCollector_ShouldFlush(t *testing.T) {
	c := NewCollector(60, 1.0/60)
	if c.ShouldFlush(59) {
		t.Error("should not flush before a full window")
	}
	if !c.ShouldFlush(60) {
		t.Error("should flush after a full window")
	}

	c.Flush(60, FieldSample{})
	if c.ShouldFlush(100) {
		t.Error("window should restart at the flush tick")
	}
	if !c.ShouldFlush(120) {
		t.Error("should flush at the end of the second window")
	}
}

func TestCollector_RecycledDelta(t *testing.T) {
	c := NewCollector(10, 0.1)
	c.Flush(10, FieldSample{Recycled: 40})

	s := c.Flush(20, FieldSample{Count: 8, Recycled: 55})
	if s.Recycled != 15 {
		t.Errorf("recycled = %d, want 15", s.Recycled)
	}
	if s.RecycleRate != 15 {
		t.Errorf("recycle rate = %v, want 15/s", s.RecycleRate)
	}
	if s.WindowStartTick != 10 || s.WindowEndTick != 20 {
		t.Errorf("window = [%d, %d], want [10, 20]", s.WindowStartTick, s.WindowEndTick)
	}
	if s.Particles != 8 {
		t.Errorf("particles = %d, want 8", s.Particles)
	}
}

func TestCollector_ResizeResetsBaseline(t *testing.T) {
	c := NewCollector(10, 0.1)
	c.Flush(10, FieldSample{Recycled: 500})

	// The field restarted its counter at zero.
	c.RecordResize()
	s := c.Flush(20, FieldSample{Recycled: 12})
	if s.Recycled != 12 {
		t.Errorf("recycled = %d, want 12", s.Recycled)
	}
	if s.Resizes != 1 {
		t.Errorf("resizes = %d, want 1", s.Resizes)
	}

	s = c.Flush(30, FieldSample{Recycled: 20})
	if s.Resizes != 0 {
		t.Errorf("resizes = %d after reset, want 0", s.Resizes)
	}
}

func TestCollector_Multipliers(t *testing.T) {
	c := NewCollector(3, 1)
	for _, m := range []float64{0, 2, 1} {
		c.RecordMultiplier(m)
	}
	s := c.Flush(3, FieldSample{})
	if s.MultMean != 1 || s.MultMin != 0 || s.MultMax != 2 {
		t.Errorf("mult stats = %v/%v/%v, want 1/0/2", s.MultMean, s.MultMin, s.MultMax)
	}

	s = c.Flush(6, FieldSample{})
	if s.MultMax != 0 {
		t.Errorf("multipliers should reset between windows, got max %v", s.MultMax)
	}
}

func TestSampleField(t *testing.T) {
	cfg := particles.DefaultConfig()
	cfg.Count = 40
	f := particles.New(cfg, particles.NewRandomSource(1))
	for i := 0; i < 30; i++ {
		f.Update(1)
	}

	s := SampleField(f, nil)
	if s.Count != 40 {
		t.Errorf("count = %d, want 40", s.Count)
	}
	if len(s.Depths) != 20 {
		t.Fatalf("depths = %d, want one per slot (20)", len(s.Depths))
	}
	for i, z := range s.Depths {
		if z < 0 || z > cfg.CameraZPlane {
			t.Errorf("depth[%d] = %v outside [0, %v]", i, z, cfg.CameraZPlane)
		}
	}
	if s.Recycled != f.Recycled() {
		t.Errorf("recycled = %d, want %d", s.Recycled, f.Recycled())
	}

	// dst is reused when it has room.
	buf := make([]float64, 0, 64)
	s = SampleField(f, buf)
	if &s.Depths[0] != &buf[:1][0] {
		t.Error("expected SampleField to reuse dst")
	}
}
