package particles

import "testing"

func TestUniformSourceRange(t *testing.T) {
	rng := NewRandomSource(99)
	for i := 0; i < 10000; i++ {
		v := rng.Uniform(-2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("Uniform(-2, 3) = %v", v)
		}
	}
	if got := rng.Uniform(4, 4); got != 4 {
		t.Errorf("Uniform(4, 4) = %v, want 4", got)
	}
}

func TestUniformSourceSeeded(t *testing.T) {
	a, b := NewRandomSource(5), NewRandomSource(5)
	c := NewRandomSource(6)
	same := true
	for i := 0; i < 100; i++ {
		va, vb, vc := a.Uniform(0, 1), b.Uniform(0, 1), c.Uniform(0, 1)
		if va != vb {
			t.Fatalf("draw %d: %v != %v for equal seeds", i, va, vb)
		}
		if va != vc {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}
