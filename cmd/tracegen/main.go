// Trace generator - follows the amplitude envelope of a WAV file and writes
// one impact multiplier per tick as CSV, for reproducible headless runs.
//
// Usage: go run ./cmd/tracegen -audio song.wav -out trace.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mpeula/musicvid.org/impact"
)

func main() {
	audioPath := flag.String("audio", "", "WAV file to analyse")
	outPath := flag.String("out", "trace.csv", "Output CSV path")
	fps := flag.Int("fps", 60, "Ticks per second of audio")
	gain := flag.Float64("gain", impact.DefaultGain, "Envelope gain")
	decay := flag.Float64("decay", impact.DefaultDecay, "Envelope smoothing (0 = none)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "tracegen: -audio is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*audioPath, *outPath, *fps, *gain, *decay); err != nil {
		slog.Error("trace generation failed", "error", err)
		os.Exit(1)
	}
}

func run(audioPath, outPath string, fps int, gain, decay float64) error {
	stream, format, err := impact.OpenWAV(audioPath)
	if err != nil {
		return err
	}
	defer stream.Close()

	src := impact.NewStreamSource(stream, format.SampleRate, fps, impact.NewFollower(gain, decay))
	rec := impact.NewRecorder(src)
	for !src.Done() {
		rec.Next()
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating trace: %w", err)
	}
	if err := impact.WriteTrace(out, rec.Values()); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	slog.Info("trace written",
		"path", outPath,
		"ticks", len(rec.Values()),
		"seconds", float64(len(rec.Values()))/float64(fps),
		"sample_rate", int(format.SampleRate),
	)
	return nil
}
