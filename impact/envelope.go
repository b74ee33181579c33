package impact

import "math"

// Default envelope settings.
const (
	DefaultGain  = 2.5
	DefaultDecay = 0.3
)

// Follower turns blocks of stereo samples into a smoothed loudness level.
// Each block's RMS (mono mix) is scaled by Gain and blended into the level
// with weight 1-Decay.
type Follower struct {
	Gain  float64
	Decay float64

	level float64
}

// NewFollower creates a follower. Decay is clamped to [0, 1).
func NewFollower(gain, decay float64) *Follower {
	if decay < 0 {
		decay = 0
	}
	if decay >= 1 {
		decay = 0.999
	}
	return &Follower{Gain: gain, Decay: decay}
}

// Analyse feeds one block and returns the new level. An empty block counts
// as silence.
func (f *Follower) Analyse(samples [][2]float64) float64 {
	return f.Feed(rms(samples))
}

// Feed blends a precomputed block RMS into the level.
func (f *Follower) Feed(blockRMS float64) float64 {
	target := f.Gain * blockRMS
	f.level = f.level*f.Decay + target*(1-f.Decay)
	return f.level
}

// Level returns the current level without feeding samples.
func (f *Follower) Level() float64 {
	return f.level
}

// Reset returns the level to zero.
func (f *Follower) Reset() {
	f.level = 0
}

func rms(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		m := (s[0] + s[1]) / 2
		sum += m * m
	}
	return math.Sqrt(sum / float64(len(samples)))
}
