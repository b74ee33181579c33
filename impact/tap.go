package impact

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Tap is a streamer wrapper that copies the most recent samples into a ring
// buffer while the audio device plays them. Stream runs on the speaker's
// goroutine; Latest is called from the tick loop.
type Tap struct {
	s    beep.Streamer
	mu   sync.Mutex
	buf  [][2]float64
	pos  int
	fill int
}

// NewTap wraps s with a ring of size samples.
func NewTap(s beep.Streamer, size int) *Tap {
	if size < 1 {
		size = 1
	}
	return &Tap{s: s, buf: make([][2]float64, size)}
}

// Stream implements beep.Streamer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		t.buf[t.pos] = samples[i]
		t.pos = (t.pos + 1) % len(t.buf)
	}
	t.fill = min(t.fill+n, len(t.buf))
	t.mu.Unlock()
	return n, ok
}

// Err implements beep.Streamer.
func (t *Tap) Err() error {
	return t.s.Err()
}

// Latest copies up to len(dst) of the most recent samples into dst in
// chronological order and returns how many were copied.
func (t *Tap) Latest(dst [][2]float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := min(len(dst), t.fill)
	start := (t.pos - n + len(t.buf)) % len(t.buf)
	for i := 0; i < n; i++ {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	return n
}

// TapSource follows the envelope of whatever a Tap has most recently played.
type TapSource struct {
	tap *Tap
	buf [][2]float64
	f   *Follower
}

// NewTapSource analyses rate/fps samples per tick.
func NewTapSource(tap *Tap, rate beep.SampleRate, fps int, f *Follower) *TapSource {
	if fps < 1 {
		fps = 60
	}
	n := max(rate.N(time.Second/time.Duration(fps)), 1)
	return &TapSource{tap: tap, buf: make([][2]float64, n), f: f}
}

// Next implements Source.
func (s *TapSource) Next() float64 {
	n := s.tap.Latest(s.buf)
	return s.f.Analyse(s.buf[:n])
}

// Play opens the audio device for format and starts the tap on it.
func Play(tap *Tap, format beep.Format) error {
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(tap)
	return nil
}

// Stop silences the audio device. Call it before closing the played stream.
func Stop() {
	speaker.Clear()
}
