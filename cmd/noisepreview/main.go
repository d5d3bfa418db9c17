// Initial density preview tool - tune the randomized start field with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eddy/config"
	"github.com/pthm-cable/eddy/fluid"
	"github.com/pthm-cable/eddy/renderer"
)

const (
	windowWidth  = 900
	windowHeight = 560
	gridSize     = 128
	precision    = 4
	previewSize  = gridSize * precision
	panelWidth   = windowWidth - previewSize - 30
)

// NoiseParams holds the randomized-start parameters being tuned.
type NoiseParams struct {
	Smoothing    float32
	Seed         int64
	StartDensity float32
	Palette      int
	Inverse      bool
}

func defaultParams(cfg *config.Config) NoiseParams {
	p := NoiseParams{
		Smoothing:    float32(cfg.Init.Smoothing),
		Seed:         cfg.Init.Seed,
		StartDensity: float32(cfg.Fluid.StartDensity),
		Inverse:      cfg.Display.Inverse,
	}
	for i, name := range config.Palettes {
		if name == cfg.Display.Palette {
			p.Palette = i
		}
	}
	return p
}

func main() {
	cfg := config.Defaults()
	params := defaultParams(cfg)

	rl.InitWindow(windowWidth, windowHeight, "Initial Density Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	f, err := fluid.New(gridSize, gridSize, float64(params.StartDensity), cfg.Fluid.DiffusionRate)
	if err != nil {
		slog.Error("failed to create fluid", "error", err)
		os.Exit(1)
	}
	raster := renderer.NewRaster(gridSize, gridSize, precision)
	density := renderer.NewDensityRenderer(raster, nil)
	defer density.Unload()

	animating := false
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			f, err = fluid.New(gridSize, gridSize, float64(params.StartDensity), cfg.Fluid.DiffusionRate)
			if err != nil {
				slog.Error("failed to create fluid", "error", err)
				os.Exit(1)
			}
			f.RandomizeDensity(params.Seed, float64(params.Smoothing))
			cmap, err := renderer.NewColormap(config.Palettes[params.Palette], cfg.Derived.MaxColor, params.Inverse)
			if err != nil {
				slog.Error("failed to build colormap", "error", err)
				os.Exit(1)
			}
			density.SetColormap(cmap)
			needsRegen = false
		}
		if animating {
			f.Step(float64(rl.GetFrameTime()))
		}
		density.Update(f)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		density.Draw()
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		stats := f.Stats()
		statsY := int32(previewSize + 15)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Mean: %.3f", stats.MinDensity, stats.MaxDensity, stats.MeanDensity), 15, statsY, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Initial Density", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Smoothing (feature size, cells)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSmoothing := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "64",
			params.Smoothing, 1, 64,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Smoothing), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSmoothing != params.Smoothing {
			params.Smoothing = newSmoothing
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Start density (0 = full range)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newStart := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.StartDensity, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.StartDensity), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newStart != params.StartDensity {
			params.StartDensity = newStart
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(params.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != params.Seed {
			params.Seed = int64(newSeed)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Palette: "+config.Palettes[params.Palette]) {
			params.Palette = (params.Palette + 1) % len(config.Palettes)
			needsRegen = true
		}
		if inverse := gui.CheckBox(rl.Rectangle{X: panelX + 130, Y: panelY + 6, Width: 18, Height: 18}, "Inverse", params.Inverse); inverse != params.Inverse {
			params.Inverse = inverse
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Simulate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams(cfg)
			animating = false
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := paramsYAML(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func paramsYAML(p NoiseParams) string {
	return fmt.Sprintf(`fluid:
  start_density: %.2f
display:
  palette: %s
  inverse: %t
init:
  randomize: true
  smoothing: %.1f
  seed: %d`,
		p.StartDensity, config.Palettes[p.Palette], p.Inverse, p.Smoothing, p.Seed)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
