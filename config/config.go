// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Palettes accepted by display.palette.
var Palettes = []string{"linear", "viridis", "inferno", "magma", "plasma", "turbo"}

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Brush     BrushConfig     `yaml:"brush"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Display   DisplayConfig   `yaml:"display"`
	Init      InitConfig      `yaml:"init"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// BrushConfig holds pointer injection parameters.
type BrushConfig struct {
	Radius        int     `yaml:"radius"`         // Pointer radius in pixels
	Precision     int     `yaml:"precision"`      // Pixels per grid cell
	DensityRate   float64 `yaml:"density_rate"`   // Density per second while drawing
	VelocityScale float64 `yaml:"velocity_scale"` // Pointer px/s to cells/s
}

// FluidConfig holds solver parameters.
type FluidConfig struct {
	StartDensity        float64 `yaml:"start_density"`
	DiffusionRate       float64 `yaml:"diffusion_rate"`
	Transport           string  `yaml:"transport"` // free | conservative
	PressureIterations  int     `yaml:"pressure_iterations"`
	DiffusionIterations int     `yaml:"diffusion_iterations"`
	MaxDT               float64 `yaml:"max_dt"` // Upper bound on the frame time fed to Step
}

// DisplayConfig holds colour mapping parameters.
type DisplayConfig struct {
	MaxColor string `yaml:"max_color"` // Hex colour drawn at density 1 (linear palette)
	Inverse  bool   `yaml:"inverse"`
	Palette  string `yaml:"palette"`
}

// InitConfig holds initial-field parameters.
type InitConfig struct {
	Randomize bool    `yaml:"randomize"`
	Smoothing float64 `yaml:"smoothing"` // Noise feature size in cells
	Seed      int64   `yaml:"seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
}

// StreamConfig holds websocket broadcast parameters.
type StreamConfig struct {
	FrameInterval int `yaml:"frame_interval"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridW, GridH int        // Screen size divided by precision
	ScreenW32    float32    // Screen.Width as float32
	ScreenH32    float32    // Screen.Height as float32
	MaxColor     color.RGBA // Parsed Display.MaxColor
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration, e.g. after the settings panel edits it.
func Set(cfg *Config) {
	global = cfg
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values. Call it after
// editing fields in place.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Brush.Precision < 1 {
		errs = append(errs, fmt.Errorf("brush.precision must be >= 1, got %d", c.Brush.Precision))
	} else if c.Screen.Width/c.Brush.Precision < 3 || c.Screen.Height/c.Brush.Precision < 3 {
		errs = append(errs, fmt.Errorf("screen %dx%d at precision %d gives a grid smaller than 3x3",
			c.Screen.Width, c.Screen.Height, c.Brush.Precision))
	}
	if c.Brush.Radius < 0 {
		errs = append(errs, fmt.Errorf("brush.radius must be >= 0, got %d", c.Brush.Radius))
	}
	if c.Fluid.DiffusionRate < 0 {
		errs = append(errs, fmt.Errorf("fluid.diffusion_rate must be >= 0, got %g", c.Fluid.DiffusionRate))
	}
	if c.Fluid.MaxDT <= 0 {
		errs = append(errs, fmt.Errorf("fluid.max_dt must be > 0, got %g", c.Fluid.MaxDT))
	}
	if c.Fluid.PressureIterations < 0 || c.Fluid.DiffusionIterations < 0 {
		errs = append(errs, errors.New("fluid iteration counts must be >= 0"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Fluid.Transport)) {
	case "", "free", "conservative":
	default:
		errs = append(errs, fmt.Errorf("fluid.transport %q is not free or conservative", c.Fluid.Transport))
	}
	if !knownPalette(c.Display.Palette) {
		errs = append(errs, fmt.Errorf("display.palette %q is not one of %s", c.Display.Palette, strings.Join(Palettes, ", ")))
	}
	if c.Stream.FrameInterval < 1 {
		errs = append(errs, fmt.Errorf("stream.frame_interval must be >= 1, got %d", c.Stream.FrameInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func knownPalette(name string) bool {
	for _, p := range Palettes {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.GridW = c.Screen.Width / c.Brush.Precision
	c.Derived.GridH = c.Screen.Height / c.Brush.Precision
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	maxColor, err := ParseHexColor(c.Display.MaxColor)
	if err != nil {
		return fmt.Errorf("display.max_color: %w", err)
	}
	c.Derived.MaxColor = maxColor
	return nil
}

// ParseHexColor parses "#rrggbb" (or "#rgb") into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
