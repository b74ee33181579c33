// Package main fits the impact envelope settings to a track, so its
// multiplier lands on a chosen mean and 90th percentile.
//
// Usage: go run ./cmd/calibrate -audio song.wav -out tuned.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/mpeula/musicvid.org/config"
	"github.com/mpeula/musicvid.org/impact"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	audioPath := flag.String("audio", "", "WAV file to calibrate against")
	outPath := flag.String("out", "calibrated.yaml", "Path for the tuned config")
	mean := flag.Float64("mean", impact.DefaultCalibrationTarget.Mean, "Target mean multiplier")
	peak := flag.Float64("peak", impact.DefaultCalibrationTarget.Peak, "Target 90th percentile multiplier")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of evaluations")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "calibrate: -audio is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	target := impact.CalibrationTarget{Mean: *mean, Peak: *peak}
	if err := run(config.Cfg(), *audioPath, *outPath, target, *maxEvals); err != nil {
		slog.Error("calibration failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, audioPath, outPath string, target impact.CalibrationTarget, maxEvals int) error {
	stream, format, err := impact.OpenWAV(audioPath)
	if err != nil {
		return err
	}
	defer stream.Close()

	start := time.Now()
	blocks, err := impact.BlockRMS(stream, format.SampleRate, cfg.Screen.TargetFPS)
	if err != nil {
		return err
	}
	slog.Info("audio analysed", "ticks", len(blocks), "elapsed", time.Since(start).Round(time.Millisecond))

	before := impact.Envelope(blocks, cfg.Impact.Gain, cfg.Impact.Decay)
	c, err := impact.Calibrate(blocks, target, maxEvals)
	if err != nil {
		return err
	}
	slog.Info("calibration complete",
		"evaluations", c.Evaluations,
		"gain", c.Gain,
		"decay", c.Decay,
		"mean", c.Mean,
		"p90", c.Peak,
		"previous_max", maxOf(before),
	)

	cfg.Impact.Gain = c.Gain
	cfg.Impact.Decay = c.Decay
	if err := cfg.WriteYAML(outPath); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Calibrated config saved to: %s (gain %.3f, decay %.3f)\n", outPath, c.Gain, c.Decay)
	return nil
}

func maxOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Max(v)
}
