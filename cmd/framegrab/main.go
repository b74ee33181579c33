// Frame grab tool - runs the particle field for a number of ticks and
// renders the resulting buffer to a PNG file for inspection.
//
// Usage: go run ./cmd/framegrab -ticks 600 -trace trace.csv -out frame.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mpeula/musicvid.org/camera"
	"github.com/mpeula/musicvid.org/config"
	"github.com/mpeula/musicvid.org/impact"
	"github.com/mpeula/musicvid.org/particles"
	"github.com/mpeula/musicvid.org/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	tracePath := flag.String("trace", "", "CSV trace of impact multipliers (empty = constant from config)")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	ticks := flag.Int("ticks", 300, "Ticks to simulate before rendering")
	seed := flag.Uint64("seed", 1, "RNG seed")
	width := flag.Int("width", 0, "Render width (0 = config screen width)")
	height := flag.Int("height", 0, "Render height (0 = config screen height)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *width <= 0 {
		*width = cfg.Screen.Width
	}
	if *height <= 0 {
		*height = cfg.Screen.Height
	}

	var src impact.Source = impact.Constant(cfg.Impact.Constant)
	if *tracePath != "" {
		t, err := impact.LoadTraceFile(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load trace: %v\n", err)
			os.Exit(1)
		}
		t.Loop = cfg.Impact.TraceLoop
		src = t
	}

	field := particles.New(cfg.Particles, particles.NewRandomSource(*seed))
	for i := 0; i < *ticks; i++ {
		field.Update(src.Next())
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Frame Grab")
	defer rl.CloseWindow()

	cam := camera.New(float32(*width), float32(*height), cfg.Render.FovY, float32(cfg.Particles.CameraZPlane))
	points := renderer.NewPointRenderer(cam, cfg.Render.PointScale, cfg.Render.Texture)
	points.Init()
	defer points.Unload()

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.NewColor(cfg.Render.Background.RGBA8(1)))
	points.Draw(field.View(), field.Color())
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Frame rendered to: %s (%dx%d, %d ticks, %d particles)\n",
			*outPath, *width, *height, *ticks, field.Count())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
