package visualizer

import (
	"fmt"
	"time"

	"github.com/mpeula/musicvid.org/config"
	"github.com/mpeula/musicvid.org/impact"
)

func noClose() error { return nil }

// newSource picks the impact source: an explicit override, then a trace,
// then audio, then the configured constant.
func newSource(cfg *config.Config, opts Options) (impact.Source, func() error, error) {
	switch {
	case opts.Source != nil:
		return opts.Source, noClose, nil

	case opts.TracePath != "":
		t, err := impact.LoadTraceFile(opts.TracePath)
		if err != nil {
			return nil, nil, err
		}
		t.Loop = cfg.Impact.TraceLoop
		return t, noClose, nil

	case opts.AudioPath != "":
		stream, format, err := impact.OpenWAV(opts.AudioPath)
		if err != nil {
			return nil, nil, err
		}
		follower := impact.NewFollower(cfg.Impact.Gain, cfg.Impact.Decay)
		fps := cfg.Screen.TargetFPS

		if opts.Play && !opts.Headless {
			tap := impact.NewTap(stream, format.SampleRate.N(time.Second))
			if err := impact.Play(tap, format); err != nil {
				stream.Close()
				return nil, nil, fmt.Errorf("starting playback: %w", err)
			}
			stop := func() error {
				impact.Stop()
				return stream.Close()
			}
			return impact.NewTapSource(tap, format.SampleRate, fps, follower), stop, nil
		}
		return impact.NewStreamSource(stream, format.SampleRate, fps, follower), stream.Close, nil
	}
	return impact.Constant(cfg.Impact.Constant), noClose, nil
}

func sourceName(opts Options) string {
	switch {
	case opts.Source != nil:
		return "custom"
	case opts.TracePath != "":
		return "trace"
	case opts.AudioPath != "" && opts.Play && !opts.Headless:
		return "playback"
	case opts.AudioPath != "":
		return "audio"
	}
	return "constant"
}
