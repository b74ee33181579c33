package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mpeula/musicvid.org/config"
	"github.com/mpeula/musicvid.org/visualizer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	term := flag.Bool("terminal", false, "Render a preview in the terminal instead of a window")
	audioPath := flag.String("audio", "", "WAV file driving the impact multiplier")
	tracePath := flag.String("trace", "", "CSV trace of impact multipliers (overrides -audio)")
	play := flag.Bool("play", false, "Play -audio through the speaker and react to what is heard")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stdout")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal
	// preview owns stdout, so it logs to a file or nowhere.
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if *term {
		logOut = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := visualizer.Options{
		Seed:           rngSeed,
		Headless:       *headless || *term,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		AudioPath:      *audioPath,
		TracePath:      *tracePath,
		Play:           *play,
		StepsPerUpdate: *stepsPerUpdate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, *term, *maxTicks); err != nil {
		slog.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts visualizer.Options, term bool, maxTicks int) error {
	switch {
	case term:
		v, err := visualizer.New(cfg, opts)
		if err != nil {
			return err
		}
		defer closeLogged(v, "visualizer")
		return v.RunTerminal(ctx, maxTicks)

	case opts.Headless:
		// Headless mode - pure CPU simulation, no raylib needed
		v, err := visualizer.New(cfg, opts)
		if err != nil {
			return err
		}
		defer closeLogged(v, "visualizer")
		return v.RunHeadless(ctx, maxTicks)
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "musicvid particles")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := visualizer.New(cfg, opts)
	if err != nil {
		return err
	}
	defer closeLogged(v, "visualizer")

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

// closeLogged closes c and logs a failure, for deferred cleanup whose error
// has nowhere else to go.
func closeLogged(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		slog.Error("failed to close "+what, "error", err)
	}
}
