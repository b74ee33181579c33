package impact

import (
	"time"

	"github.com/gopxl/beep"
)

// StreamSource pulls one tick's worth of samples from a streamer per call
// and follows their envelope. Once the streamer is exhausted the level
// decays as if fed silence.
type StreamSource struct {
	s    beep.Streamer
	buf  [][2]float64
	f    *Follower
	done bool
}

// NewStreamSource reads rate/fps samples per tick from s.
func NewStreamSource(s beep.Streamer, rate beep.SampleRate, fps int, f *Follower) *StreamSource {
	if fps < 1 {
		fps = 60
	}
	n := rate.N(time.Second / time.Duration(fps))
	if n < 1 {
		n = 1
	}
	return &StreamSource{
		s:   s,
		buf: make([][2]float64, n),
		f:   f,
	}
}

// Next implements Source.
func (s *StreamSource) Next() float64 {
	if s.done {
		return s.f.Analyse(nil)
	}
	n, ok := s.s.Stream(s.buf)
	if !ok || n < len(s.buf) {
		s.done = true
	}
	return s.f.Analyse(s.buf[:n])
}

// Done reports whether the streamer has been drained.
func (s *StreamSource) Done() bool {
	return s.done
}

// Err returns the streamer's error, if any.
func (s *StreamSource) Err() error {
	return s.s.Err()
}
