package visualizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mpeula/musicvid.org/telemetry"
	"github.com/mpeula/musicvid.org/terminal"
)

// RunHeadless steps as fast as possible until ctx is done, maxTicks is
// reached (0 = unlimited) or a finite source runs out.
func (v *Visualizer) RunHeadless(ctx context.Context, maxTicks int) error {
	slog.Info("starting headless run",
		"seed", v.opts.Seed,
		"max_ticks", maxTicks,
		"steps_per_update", v.stepsPerUpdate,
	)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("run cancelled", "tick", v.tick)
			return nil
		}
		for i := 0; i < v.stepsPerUpdate; i++ {
			v.Step()
			if v.done(maxTicks) {
				return nil
			}
		}
	}
}

// done reports whether a run should stop after the current tick.
func (v *Visualizer) done(maxTicks int) bool {
	if maxTicks > 0 && int(v.tick) >= maxTicks {
		slog.Info("max ticks reached", "tick", v.tick)
		return true
	}
	if v.exhausted() {
		slog.Info("source exhausted", "tick", v.tick)
		return true
	}
	return false
}

// RunTerminal renders a tcell preview at the configured frame rate until
// ctx is done, the user quits, maxTicks is reached or the source runs out.
func (v *Visualizer) RunTerminal(ctx context.Context, maxTicks int) error {
	screen, err := terminal.NewScreen()
	if err != nil {
		return err
	}
	return v.runTerminal(ctx, screen, maxTicks)
}

func (v *Visualizer) runTerminal(ctx context.Context, screen tcell.Screen, maxTicks int) error {
	preview := terminal.New(screen, v.cfg.Render.FovY, v.cam.Z, v.cfg.Render.PointScale, v.cfg.Render.Background)
	defer preview.Close()

	events := make(chan tcell.Event, 16)
	go preview.PollEvents(events)

	ticker := time.NewTicker(v.cfg.Derived.TickDuration)
	defer ticker.Stop()
	dt := float32(v.cfg.Derived.TickDuration.Seconds())

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !preview.HandleEvent(ev) {
				slog.Info("terminal closed", "tick", v.tick)
				return nil
			}

		case <-ticker.C:
			v.perf.StartTick()
			stop := false
			for i := 0; i < v.stepsPerUpdate && !stop; i++ {
				v.step()
				stop = v.done(maxTicks)
			}
			v.perf.StartPhase(telemetry.PhaseDraw)
			preview.Draw(v.field.View(), v.tint(dt))
			v.perf.EndTick()
			v.perf.RecordFrame()
			if stop {
				return nil
			}
		}
	}
}
