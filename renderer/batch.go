package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mpeula/musicvid.org/particles"
)

// spriteBatch mirrors the field buffer in raylib-ready form. A channel is
// copied only when the field has flagged it dirty since the last sync.
type spriteBatch struct {
	positions []rl.Vector3
	sizes     []float32
	alphas    []float32
	uploads   [3]int // per-channel refresh count
}

// sync refreshes the cached channels from view. A change in entry count
// forces a full refresh.
func (b *spriteBatch) sync(view particles.View) {
	n := view.Len()
	full := n != len(b.positions)
	if full {
		b.positions = make([]rl.Vector3, n)
		b.sizes = make([]float32, n)
		b.alphas = make([]float32, n)
	}

	if view.TakeDirty(particles.ChannelPosition) || full {
		for i := range b.positions {
			x, y, z := view.Position(i)
			b.positions[i] = rl.NewVector3(x, y, z)
		}
		b.uploads[particles.ChannelPosition]++
	}
	if view.TakeDirty(particles.ChannelSize) || full {
		for i := range b.sizes {
			b.sizes[i] = view.Size(i)
		}
		b.uploads[particles.ChannelSize]++
	}
	if view.TakeDirty(particles.ChannelAlpha) || full {
		for i := range b.alphas {
			b.alphas[i] = view.Alpha(i)
		}
		b.uploads[particles.ChannelAlpha]++
	}
}

func (b *spriteBatch) len() int {
	return len(b.positions)
}
