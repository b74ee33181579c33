// Package terminal renders a coarse preview of the particle field into a
// tcell screen, for headless machines and SSH sessions.
package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/mpeula/musicvid.org/camera"
	"github.com/mpeula/musicvid.org/particles"
)

// cellPixels is the on-screen point size that lights a whole cell.
const cellPixels = 8

// Terminal cells are roughly twice as tall as they are wide, so the camera
// viewport has two virtual rows per cell row.
const cellAspect = 2

var ramp = []rune(" .:-=+*#%@")

// Preview draws a particles.View into a tcell screen.
type Preview struct {
	screen     tcell.Screen
	cam        *camera.Camera
	pointScale float32
	background tcell.Color

	cells []float32
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// New creates a preview on an initialized screen.
func New(screen tcell.Screen, fovY, cameraZ, pointScale float32, background particles.Color) *Preview {
	w, h := screen.Size()
	return &Preview{
		screen:     screen,
		cam:        camera.New(float32(w), float32(h*cellAspect), fovY, cameraZ),
		pointScale: pointScale,
		background: toTcell(background, 1),
	}
}

// Rasterize accumulates per-cell brightness for a w×h grid. Each entry
// contributes its alpha, scaled down when its point size is under a cell.
// dst is reused when large enough.
func Rasterize(view particles.View, cam *camera.Camera, pointScale float32, w, h int, dst []float32) []float32 {
	if cap(dst) < w*h {
		dst = make([]float32, w*h)
	}
	dst = dst[:w*h]
	clear(dst)

	for i := 0; i < view.Len(); i++ {
		x, y, z := view.Position(i)
		sx, sy, _, ok := cam.Project(x, y, z)
		if !ok || sx < 0 || sy < 0 {
			continue
		}
		cx, cy := int(sx), int(sy/cellAspect)
		if cx >= w || cy >= h {
			continue
		}
		px := cam.PointSize(x, y, z, view.Size(i), pointScale)
		dst[cy*w+cx] += view.Alpha(i) * clampUnit(px/cellPixels, 0.2)
	}
	return dst
}

// Glyph maps a brightness to a shading rune. Any lit cell gets at least
// the faintest mark.
func Glyph(b float32) rune {
	if b <= 0 {
		return ramp[0]
	}
	idx := int(b * float32(len(ramp)-1))
	return ramp[min(max(idx, 1), len(ramp)-1)]
}

func clampUnit(v, lo float32) float32 {
	return min(max(v, lo), 1)
}

func toTcell(c particles.Color, brightness float32) tcell.Color {
	b := clampUnit(brightness, 0)
	return tcell.NewRGBColor(
		int32(c.R*b*255),
		int32(c.G*b*255),
		int32(c.B*b*255),
	)
}

// Draw renders the view tinted with tint and shows the screen.
func (p *Preview) Draw(view particles.View, tint particles.Color) {
	w, h := p.screen.Size()
	p.cells = Rasterize(view, p.cam, p.pointScale, w, h, p.cells)

	base := tcell.StyleDefault.Background(p.background)
	p.screen.SetStyle(base)
	p.screen.Clear()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b := p.cells[y*w+x]
			if b <= 0 {
				continue
			}
			p.screen.SetContent(x, y, Glyph(b), nil, base.Foreground(toTcell(tint, b)))
		}
	}
	p.screen.Show()
}

// HandleEvent reacts to input and resizes. It returns false when the user
// asked to quit.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		w, h := ev.Size()
		p.cam.Resize(float32(w), float32(h*cellAspect))
		p.screen.Sync()
	}
	return true
}

// PollEvents forwards screen events to ch until the screen is finalized.
func (p *Preview) PollEvents(ch chan<- tcell.Event) {
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		ch <- ev
	}
}

// Close restores the terminal.
func (p *Preview) Close() {
	p.screen.Fini()
}
