package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Z != 200 {
		t.Errorf("expected Z 200, got %f", cam.Z)
	}
}

func TestProjectCenter(t *testing.T) {
	cam := New(1280, 720, 45, 200)

	// The forward axis maps to screen center at any depth.
	for _, z := range []float32{0, 100, 199} {
		sx, sy, _, ok := cam.Project(0, 0, z)
		if !ok || !near(sx, 640) || !near(sy, 360) {
			t.Errorf("z=%v: expected (640, 360), got (%f, %f) ok=%v", z, sx, sy, ok)
		}
	}
}

func TestProjectFovEdge(t *testing.T) {
	cam := New(1280, 720, 90, 200)

	// With a 90 degree FOV, y == depth lands on the top edge.
	_, sy, depth, ok := cam.Project(0, 100, 100)
	if !ok || depth != 100 {
		t.Fatalf("expected depth 100, got %f ok=%v", depth, ok)
	}
	if !near(sy, 0) {
		t.Errorf("expected top edge, got sy=%f", sy)
	}
}

func TestProjectBehindViewer(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	for _, z := range []float32{200, 250} {
		if _, _, _, ok := cam.Project(0, 0, z); ok {
			t.Errorf("z=%v should not project", z)
		}
	}
}

func TestMirroredPointsProjectSymmetrically(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	lx, ly, _, _ := cam.Project(-12, 5, 80)
	rx, ry, _, _ := cam.Project(12, 5, 80)
	if !near(lx+rx, 1280) || !near(ly, ry) {
		t.Errorf("expected symmetric projection, got (%f,%f) and (%f,%f)", lx, ly, rx, ry)
	}
}

func TestUnprojectRoundtrip(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	testCases := []struct{ x, y, z float32 }{
		{0, 0, 0},
		{30, -20, 50},
		{-5, 8, 190},
	}
	for _, tc := range testCases {
		sx, sy, depth, ok := cam.Project(tc.x, tc.y, tc.z)
		if !ok {
			t.Fatalf("(%v,%v,%v) did not project", tc.x, tc.y, tc.z)
		}
		x, y, z := cam.Unproject(sx, sy, depth)
		if !near(x, tc.x) || !near(y, tc.y) || !near(z, tc.z) {
			t.Errorf("roundtrip failed: (%f,%f,%f) -> (%f,%f,%f)", tc.x, tc.y, tc.z, x, y, z)
		}
	}
}

func TestPointSizeAttenuates(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	far := cam.PointSize(0, 0, 0, 10, 100)
	close := cam.PointSize(0, 0, 150, 10, 100)
	if !near(far, 5) {
		t.Errorf("expected 100*10/200 = 5, got %f", far)
	}
	if close <= far {
		t.Errorf("closer sprite should be larger: %f <= %f", close, far)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	if !cam.IsVisible(0, 0, 0, 1) {
		t.Error("origin should be visible")
	}
	if cam.IsVisible(1000, 0, 190, 1) {
		t.Error("far lateral point near the viewer should be culled")
	}
	if cam.IsVisible(0, 0, 210, 1) {
		t.Error("point behind the viewer should be culled")
	}
}

func TestZoomLimits(t *testing.T) {
	cam := New(1280, 720, 45, 200)
	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
	cam.SetZoom(0)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestEffectiveFovY(t *testing.T) {
	c := New(800, 600, 45, 200)
	if got := c.EffectiveFovY(); !near(got, 45) {
		t.Errorf("EffectiveFovY at zoom 1 = %v, want 45", got)
	}

	// Zooming in narrows the view; the focal length must agree.
	c.SetZoom(2)
	fov := c.EffectiveFovY()
	if fov >= 45 {
		t.Errorf("EffectiveFovY at zoom 2 = %v, want < 45", fov)
	}
	zoomed := New(800, 600, fov, 200)
	if math.Abs(float64(zoomed.Focal()/c.Focal())-1) > 1e-4 {
		t.Errorf("focal mismatch: %v vs %v", zoomed.Focal(), c.Focal())
	}
}
