package ui

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pthm-cable/eddy/config"
)

// Choices offered by the settings window.
var (
	FPSChoices       = []int{30, 60, 120, 144, 180, 240}
	PrecisionChoices = []int{1, 2, 5, 10}
)

// Settings are the user-facing launch options. They map one-to-one onto
// config fields.
type Settings struct {
	Width, Height            int
	MaxFPS                   int
	PointerRadius            int
	Precision                int
	StartDensity             float64
	DiffusionRate            float64
	CreateDensityOnAdvection bool
	MaxColor                 string
	InverseColor             bool
	Palette                  string
	Randomize                bool
	Smoothing                float64
}

// FromConfig reads the launch options out of cfg.
func FromConfig(cfg *config.Config) Settings {
	return Settings{
		Width:                    cfg.Screen.Width,
		Height:                   cfg.Screen.Height,
		MaxFPS:                   cfg.Screen.TargetFPS,
		PointerRadius:            cfg.Brush.Radius,
		Precision:                cfg.Brush.Precision,
		StartDensity:             cfg.Fluid.StartDensity,
		DiffusionRate:            cfg.Fluid.DiffusionRate,
		CreateDensityOnAdvection: !strings.EqualFold(strings.TrimSpace(cfg.Fluid.Transport), "conservative"),
		MaxColor:                 cfg.Display.MaxColor,
		InverseColor:             cfg.Display.Inverse,
		Palette:                  cfg.Display.Palette,
		Randomize:                cfg.Init.Randomize,
		Smoothing:                cfg.Init.Smoothing,
	}
}

// Apply writes the settings into cfg and recomputes derived values. On a
// validation error cfg is left unchanged.
func (s Settings) Apply(cfg *config.Config) error {
	next := *cfg
	next.Screen.Width = s.Width
	next.Screen.Height = s.Height
	next.Screen.TargetFPS = s.MaxFPS
	next.Brush.Radius = s.PointerRadius
	next.Brush.Precision = s.Precision
	next.Fluid.StartDensity = s.StartDensity
	next.Fluid.DiffusionRate = s.DiffusionRate
	next.Fluid.Transport = "conservative"
	if s.CreateDensityOnAdvection {
		next.Fluid.Transport = "free"
	}
	next.Display.MaxColor = s.MaxColor
	next.Display.Inverse = s.InverseColor
	next.Display.Palette = s.Palette
	next.Init.Randomize = s.Randomize
	next.Init.Smoothing = s.Smoothing

	if err := next.Finalize(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// nearestIndex returns the index of the choice closest to v.
func nearestIndex(choices []int, v int) int32 {
	best := 0
	for i, c := range choices {
		if abs(c-v) < abs(choices[best]-v) {
			best = i
		}
	}
	return int32(best)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}

func paletteIndex(name string) int32 {
	for i, p := range config.Palettes {
		if strings.EqualFold(p, name) {
			return int32(i)
		}
	}
	return 0
}

// colorHex formats an opaque colour as "#rrggbb".
func colorHex(c color.RGBA) string {
	c.A = 255
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return cf.Hex()
}

// SettingsPanel is the window shown before the simulation starts.
type SettingsPanel struct {
	base     *config.Config
	settings Settings
	err      error
}

// NewSettingsPanel creates a panel pre-filled from cfg. cfg is only used to
// validate edits; it is not modified.
func NewSettingsPanel(cfg *config.Config) *SettingsPanel {
	return &SettingsPanel{
		base:     cfg,
		settings: FromConfig(cfg),
	}
}

// Run opens the settings window and blocks until the user launches the
// simulation or closes the window. The window is closed before returning.
func (p *SettingsPanel) Run() (Settings, bool) {
	const windowWidth, windowHeight = 520, 640

	rl.InitWindow(windowWidth, windowHeight, "eddy settings")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	renderer := NewRenderer()
	s := &p.settings
	fpsIdx := nearestIndex(FPSChoices, s.MaxFPS)
	precIdx := nearestIndex(PrecisionChoices, s.Precision)
	palIdx := paletteIndex(s.Palette)
	maxColor, err := config.ParseHexColor(s.MaxColor)
	if err != nil {
		maxColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(renderer.Theme.PanelBg)

		const x, labelW, sliderW float32 = 20, 150, 260
		y := float32(20)
		rl.DrawText("Simulation settings", int32(x), int32(y), 20, rl.White)
		y += 40

		slider := func(label string, value, min, max float32, format string) float32 {
			rl.DrawText(label, int32(x), int32(y+4), renderer.Theme.FontSize, renderer.Theme.LabelColor)
			v := gui.SliderBar(
				rl.Rectangle{X: x + labelW, Y: y, Width: sliderW, Height: 20},
				"", fmt.Sprintf(format, value), value, min, max,
			)
			y += 30
			return v
		}

		s.Width = int(math.Round(float64(slider("Width", float32(s.Width), 200, 1920, "%.0f"))))
		s.Height = int(math.Round(float64(slider("Height", float32(s.Height), 200, 1080, "%.0f"))))
		s.PointerRadius = int(math.Round(float64(slider("Pointer radius", float32(s.PointerRadius), 0, 100, "%.0f"))))
		s.StartDensity = float64(slider("Start density", float32(s.StartDensity), 0, 1, "%.2f"))
		s.DiffusionRate = float64(slider("Diffusion rate", float32(s.DiffusionRate), 0, 2, "%.2f"))
		s.Smoothing = float64(slider("Smoothing", float32(s.Smoothing), 1, 64, "%.0f"))

		rl.DrawText("Max FPS", int32(x), int32(y+4), renderer.Theme.FontSize, renderer.Theme.LabelColor)
		if idx := gui.ComboBox(rl.Rectangle{X: x + labelW, Y: y, Width: sliderW, Height: 20}, joinInts(FPSChoices), fpsIdx); idx != fpsIdx {
			fpsIdx = idx
			s.MaxFPS = FPSChoices[idx]
		}
		y += 30

		rl.DrawText("Precision (px/cell)", int32(x), int32(y+4), renderer.Theme.FontSize, renderer.Theme.LabelColor)
		if idx := gui.ComboBox(rl.Rectangle{X: x + labelW, Y: y, Width: sliderW, Height: 20}, joinInts(PrecisionChoices), precIdx); idx != precIdx {
			precIdx = idx
			s.Precision = PrecisionChoices[idx]
		}
		y += 30

		rl.DrawText("Palette", int32(x), int32(y+4), renderer.Theme.FontSize, renderer.Theme.LabelColor)
		if idx := gui.ComboBox(rl.Rectangle{X: x + labelW, Y: y, Width: sliderW, Height: 20}, strings.Join(config.Palettes, ";"), palIdx); idx != palIdx {
			palIdx = idx
			s.Palette = config.Palettes[idx]
		}
		y += 34

		s.CreateDensityOnAdvection = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 18, Height: 18}, "Create density on advection", s.CreateDensityOnAdvection)
		y += 26
		s.InverseColor = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 18, Height: 18}, "Inverse colour", s.InverseColor)
		y += 26
		s.Randomize = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 18, Height: 18}, "Randomize initial density", s.Randomize)
		y += 34

		rl.DrawText("Max density colour", int32(x), int32(y), renderer.Theme.FontSize, renderer.Theme.LabelColor)
		maxColor = gui.ColorPicker(rl.Rectangle{X: x + labelW, Y: y, Width: 100, Height: 100}, "", maxColor)
		s.MaxColor = colorHex(maxColor)
		y += 110

		if p.err != nil {
			rl.DrawText(p.err.Error(), int32(x), int32(y), renderer.Theme.FontSize, rl.Red)
		}

		launch := gui.Button(rl.Rectangle{X: windowWidth - 140, Y: windowHeight - 50, Width: 120, Height: 30}, "Launch")
		rl.EndDrawing()

		if launch {
			probe := *p.base
			if p.err = s.Apply(&probe); p.err == nil {
				return p.settings, true
			}
		}
	}
	return p.settings, false
}
