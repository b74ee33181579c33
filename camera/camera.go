// Package camera provides the perspective viewer that looks down the
// particle field's forward axis.
package camera

import "math"

// Camera is a pinhole viewer at (0, 0, Z) looking toward -Z with +Y up.
type Camera struct {
	// Z is the viewer's position on the forward axis (the camera plane).
	Z float32

	// FovY is the vertical field of view in degrees.
	FovY float32

	// Zoom scales the focal length (1.0 = FovY as given).
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Near is the minimum depth in front of the viewer that projects.
	Near float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera for the given viewport.
func New(viewportW, viewportH, fovY, z float32) *Camera {
	return &Camera{
		Z:         z,
		FovY:      fovY,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Near:      0.1,
		MinZoom:   0.25,
		MaxZoom:   4.0,
	}
}

// Focal returns the focal length in pixels.
func (c *Camera) Focal() float32 {
	half := float64(c.FovY) * math.Pi / 360
	return c.Zoom * (c.ViewportH / 2) / float32(math.Tan(half))
}

// EffectiveFovY returns the vertical field of view in degrees after zoom.
func (c *Camera) EffectiveFovY() float32 {
	half := float64(c.FovY) * math.Pi / 360
	return float32(math.Atan(math.Tan(half)/float64(c.Zoom)) * 360 / math.Pi)
}

// Project converts a world point to screen coordinates. depth is the distance
// in front of the viewer; ok is false when the point is at or behind the
// near plane.
func (c *Camera) Project(x, y, z float32) (sx, sy, depth float32, ok bool) {
	depth = c.Z - z
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	f := c.Focal() / depth
	sx = c.ViewportW/2 + x*f
	sy = c.ViewportH/2 - y*f
	return sx, sy, depth, true
}

// Unproject converts screen coordinates to a world point at the given depth.
func (c *Camera) Unproject(sx, sy, depth float32) (x, y, z float32) {
	f := c.Focal() / depth
	x = (sx - c.ViewportW/2) / f
	y = (c.ViewportH/2 - sy) / f
	return x, y, c.Z - depth
}

// PointSize returns the on-screen size of a sprite: scale*size/distance,
// where distance is measured from the viewer to the point.
func (c *Camera) PointSize(x, y, z, size, scale float32) float32 {
	dz := c.Z - z
	dist := float32(math.Sqrt(float64(x*x + y*y + dz*dz)))
	if dist < c.Near {
		dist = c.Near
	}
	return scale * size / dist
}

// IsVisible returns true if a sprite at (x, y, z) with the given screen
// radius could be on screen (conservative check for culling).
func (c *Camera) IsVisible(x, y, z, radius float32) bool {
	sx, sy, _, ok := c.Project(x, y, z)
	if !ok {
		return false
	}
	return sx+radius >= 0 && sx-radius <= c.ViewportW &&
		sy+radius >= 0 && sy-radius <= c.ViewportH
}

// SetZoom sets zoom within the configured limits.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// Resize updates the viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
