// Package renderer draws the particle field with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mpeula/musicvid.org/camera"
	"github.com/mpeula/musicvid.org/particles"
)

const spriteTextureSize = 64

// PointRenderer draws every buffer entry as an additive, camera-facing
// sprite. It only reads the field through a particles.View.
type PointRenderer struct {
	cam        *camera.Camera
	pointScale float32

	texturePath string
	texture     rl.Texture2D
	initialized bool

	batch spriteBatch
}

// NewPointRenderer creates a renderer viewing through cam. Sprite sizes
// follow scale*size/distance pixels.
func NewPointRenderer(cam *camera.Camera, pointScale float32, texturePath string) *PointRenderer {
	return &PointRenderer{
		cam:         cam,
		pointScale:  pointScale,
		texturePath: texturePath,
	}
}

// Init loads the sprite texture (must be called after raylib window is created).
// An empty texture path generates a soft radial dot.
func (r *PointRenderer) Init() {
	if r.initialized {
		return
	}
	if r.texturePath != "" {
		r.texture = rl.LoadTexture(r.texturePath)
	}
	if r.texture.ID == 0 {
		img := rl.GenImageGradientRadial(spriteTextureSize, spriteTextureSize, 0, rl.White, rl.Blank)
		r.texture = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
	}
	rl.SetTextureFilter(r.texture, rl.FilterBilinear)
	r.initialized = true
}

// camera3D builds the raylib camera matching r.cam.
func (r *PointRenderer) camera3D() rl.Camera3D {
	return rl.NewCamera3D(
		rl.NewVector3(0, 0, r.cam.Z),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		r.cam.EffectiveFovY(),
		rl.CameraPerspective,
	)
}

// Draw renders the buffer with the given tint. Call between ticks only.
func (r *PointRenderer) Draw(view particles.View, tint particles.Color) {
	if !r.initialized {
		r.Init()
	}
	r.batch.sync(view)

	cam3d := r.camera3D()
	// A billboard of world size s at distance d covers s*focal/d pixels.
	worldPerPixel := 1 / r.cam.Focal()

	rl.BeginMode3D(cam3d)
	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 0; i < r.batch.len(); i++ {
		p := r.batch.positions[i]
		px := r.cam.PointSize(p.X, p.Y, p.Z, r.batch.sizes[i], r.pointScale)
		if !r.cam.IsVisible(p.X, p.Y, p.Z, px) {
			continue
		}
		_, _, depth, _ := r.cam.Project(p.X, p.Y, p.Z)
		scale := px * depth * worldPerPixel
		rl.DrawBillboard(cam3d, r.texture, p, scale, rl.NewColor(tint.RGBA8(r.batch.alphas[i])))
	}
	rl.EndBlendMode()
	rl.EndMode3D()
}

// Unload frees resources.
func (r *PointRenderer) Unload() {
	if r.initialized {
		rl.UnloadTexture(r.texture)
		r.initialized = false
	}
}
