package impact

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gopxl/beep"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// maxDecay is the largest decay a calibration may choose.
const maxDecay = 0.999

// CalibrationTarget describes the multiplier distribution a track should
// produce: its mean and its 90th percentile.
type CalibrationTarget struct {
	Mean float64
	Peak float64
}

// DefaultCalibrationTarget keeps loud passages near 1 with a quiet floor.
var DefaultCalibrationTarget = CalibrationTarget{Mean: 0.5, Peak: 1.0}

// Calibration is the result of fitting envelope settings to a track.
type Calibration struct {
	Gain        float64
	Decay       float64
	Mean        float64 // Achieved mean multiplier
	Peak        float64 // Achieved 90th percentile
	Evaluations int
}

// BlockRMS drains s and returns the RMS of each tick-sized block.
func BlockRMS(s beep.Streamer, rate beep.SampleRate, fps int) ([]float64, error) {
	if fps < 1 {
		fps = 60
	}
	buf := make([][2]float64, max(rate.N(time.Second/time.Duration(fps)), 1))
	var out []float64
	for {
		n, ok := s.Stream(buf)
		if n > 0 {
			out = append(out, rms(buf[:n]))
		}
		if !ok || n < len(buf) {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return out, nil
}

// Envelope replays a Follower over precomputed block RMS values.
func Envelope(blockRMS []float64, gain, decay float64) []float64 {
	f := NewFollower(gain, decay)
	out := make([]float64, len(blockRMS))
	for i, r := range blockRMS {
		out[i] = f.Feed(r)
	}
	return out
}

// envelopeStats returns the mean and 90th percentile of an envelope.
func envelopeStats(levels []float64) (mean, peak float64) {
	if len(levels) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)
	return stat.Mean(sorted, nil), stat.Quantile(0.9, stat.Empirical, sorted, nil)
}

// Calibrate searches gain and decay so the envelope over blockRMS matches
// target. It uses Nelder-Mead over log gain and logit decay, keeping the best
// point seen.
func Calibrate(blockRMS []float64, target CalibrationTarget, maxEvals int) (Calibration, error) {
	if target.Mean <= 0 || target.Peak <= 0 {
		return Calibration{}, fmt.Errorf("calibration target must be positive, got %+v", target)
	}
	if floatsAllZero(blockRMS) {
		return Calibration{}, errors.New("audio is silent")
	}
	if maxEvals < 1 {
		maxEvals = 500
	}

	decode := func(x []float64) (gain, decay float64) {
		return math.Exp(x[0]), maxDecay / (1 + math.Exp(-x[1]))
	}

	best := Calibration{}
	bestLoss := math.Inf(1)
	evals := 0

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			gain, decay := decode(x)
			mean, peak := envelopeStats(Envelope(blockRMS, gain, decay))
			dm := (mean - target.Mean) / target.Mean
			dp := (peak - target.Peak) / target.Peak
			loss := dm*dm + dp*dp

			evals++
			if loss < bestLoss {
				bestLoss = loss
				best = Calibration{Gain: gain, Decay: decay, Mean: mean, Peak: peak}
			}
			return loss
		},
	}

	d := DefaultDecay / maxDecay
	initX := []float64{math.Log(DefaultGain), math.Log(d / (1 - d))}
	settings := &optimize.Settings{FuncEvaluations: maxEvals}

	// The evaluation limit ends the search with an error status; the best
	// point seen is still valid.
	if _, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{}); err != nil && evals == 0 {
		return Calibration{}, fmt.Errorf("calibrating: %w", err)
	}
	best.Evaluations = evals
	return best, nil
}

func floatsAllZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
