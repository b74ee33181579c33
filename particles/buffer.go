package particles

// VertexSize is the position stride (x, y, z).
const VertexSize = 3

// Channel identifies one of the packed buffer arrays.
type Channel uint8

const (
	ChannelPosition Channel = iota
	ChannelSize
	ChannelAlpha
	numChannels
)

// String returns the attribute name of the channel.
func (c Channel) String() string {
	switch c {
	case ChannelPosition:
		return "position"
	case ChannelSize:
		return "size"
	case ChannelAlpha:
		return "alpha"
	}
	return "unknown"
}

// Buffer holds the GPU-ready particle arrays. Entry i+N/2 mirrors entry i
// with x negated, so N/2 simulated slots fill all N entries.
type Buffer struct {
	position []float32
	size     []float32
	alpha    []float32
	count    int
	half     int
	dirty    [numChannels]bool
}

// newBuffer allocates a zeroed buffer for count entries. count must be even.
func newBuffer(count int) *Buffer {
	return &Buffer{
		position: make([]float32, count*VertexSize),
		size:     make([]float32, count),
		alpha:    make([]float32, count),
		count:    count,
		half:     count / 2,
	}
}

// writeMirrored writes value at index and at its mirrored index.
// stride is the element width of the channel.
func (b *Buffer) writeMirrored(ch []float32, index int, value float32, stride int) {
	ch[index] = value
	ch[index+stride*b.half] = value
}

// setPosition writes a slot position and its x-negated mirror.
func (b *Buffer) setPosition(slot int, x, y, z float32) {
	base := slot * VertexSize
	b.writeMirrored(b.position, base+0, x, VertexSize)
	b.writeMirrored(b.position, base+1, y, VertexSize)
	b.writeMirrored(b.position, base+2, z, VertexSize)
	b.position[base+b.half*VertexSize] = -x
}

// positionAt returns the stored position of an entry.
func (b *Buffer) positionAt(i int) (x, y, z float32) {
	base := i * VertexSize
	return b.position[base], b.position[base+1], b.position[base+2]
}

func (b *Buffer) setSize(slot int, v float32) {
	b.writeMirrored(b.size, slot, v, 1)
}

func (b *Buffer) setAlpha(slot int, v float32) {
	b.writeMirrored(b.alpha, slot, v, 1)
}

// MarkDirty flags a channel as changed since the consumer last took it.
func (b *Buffer) MarkDirty(c Channel) {
	b.dirty[c] = true
}

// Dirty reports whether a channel changed since the last TakeDirty.
func (b *Buffer) Dirty(c Channel) bool {
	return b.dirty[c]
}

// TakeDirty reports and clears the dirty flag of a channel.
func (b *Buffer) TakeDirty(c Channel) bool {
	d := b.dirty[c]
	b.dirty[c] = false
	return d
}

// View returns a read-only accessor over the buffer.
func (b *Buffer) View() View {
	return View{b: b}
}

// View is the consumer side of a Buffer. It exposes values but never the
// backing slices. A View is only valid between ticks.
type View struct {
	b *Buffer
}

// Len returns the number of rendered entries.
func (v View) Len() int {
	if v.b == nil {
		return 0
	}
	return v.b.count
}

// Position returns entry i's position.
func (v View) Position(i int) (x, y, z float32) {
	return v.b.positionAt(i)
}

// Size returns entry i's rendered size.
func (v View) Size(i int) float32 {
	return v.b.size[i]
}

// Alpha returns entry i's opacity.
func (v View) Alpha(i int) float32 {
	return v.b.alpha[i]
}

// Dirty reports whether a channel changed since the consumer last took it.
func (v View) Dirty(c Channel) bool {
	return v.b != nil && v.b.Dirty(c)
}

// TakeDirty reports and clears a channel's dirty flag. This is the only
// buffer state a consumer may change.
func (v View) TakeDirty(c Channel) bool {
	return v.b != nil && v.b.TakeDirty(c)
}

// Snapshot holds copies of the three channels.
type Snapshot struct {
	Position []float32
	Size     []float32
	Alpha    []float32
}

// Snapshot copies the current channel contents.
func (v View) Snapshot() Snapshot {
	if v.b == nil {
		return Snapshot{}
	}
	return Snapshot{
		Position: append([]float32(nil), v.b.position...),
		Size:     append([]float32(nil), v.b.size...),
		Alpha:    append([]float32(nil), v.b.alpha...),
	}
}
