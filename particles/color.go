package particles

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// Color is the tint uniform applied to every particle. Components are in [0, 1].
type Color struct {
	R, G, B float32
}

// White is the default tint.
var White = Color{R: 1, G: 1, B: 1}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

// RGBA8 returns the color as 8-bit components with the given alpha in [0, 1].
func (c Color) RGBA8(alpha float32) (r, g, b, a uint8) {
	return channelByte(c.R), channelByte(c.G), channelByte(c.B), channelByte(alpha)
}

func channelByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// UnmarshalYAML reads a hex string.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes a hex string.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// ColorFade crossfades a tint toward a target color. Call Update once per
// rendered frame; with a zero duration the target applies immediately.
type ColorFade struct {
	current Color
	target  Color
	tweens  [3]*gween.Tween
	done    bool
}

// NewColorFade starts at c with no fade in progress.
func NewColorFade(c Color) *ColorFade {
	return &ColorFade{current: c, target: c, done: true}
}

// Set begins a fade from the current color to target over duration seconds.
func (f *ColorFade) Set(target Color, duration float32) {
	f.target = target
	if duration <= 0 {
		f.current = target
		f.done = true
		return
	}
	f.tweens[0] = gween.New(f.current.R, target.R, duration, ease.InOutQuad)
	f.tweens[1] = gween.New(f.current.G, target.G, duration, ease.InOutQuad)
	f.tweens[2] = gween.New(f.current.B, target.B, duration, ease.InOutQuad)
	f.done = false
}

// Update advances the fade by dt seconds and returns the current color.
func (f *ColorFade) Update(dt float32) Color {
	if f.done {
		return f.current
	}
	allDone := true
	vals := [3]float32{}
	for i, tw := range f.tweens {
		v, finished := tw.Update(dt)
		vals[i] = v
		if !finished {
			allDone = false
		}
	}
	f.current = Color{R: vals[0], G: vals[1], B: vals[2]}
	if allDone {
		f.current = f.target
	}
	f.done = allDone
	return f.current
}

// Current returns the color without advancing.
func (f *ColorFade) Current() Color {
	return f.current
}

// Done reports whether no fade is in progress.
func (f *ColorFade) Done() bool {
	return f.done
}
