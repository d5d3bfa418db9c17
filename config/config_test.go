package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Screen.Width != 800 || cfg.Screen.Height != 600 {
		t.Errorf("expected 800x600 screen, got %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Brush.Precision != 5 || cfg.Brush.Radius != 10 {
		t.Errorf("expected precision 5 radius 10, got %d/%d", cfg.Brush.Precision, cfg.Brush.Radius)
	}
	if cfg.Derived.GridW != 160 || cfg.Derived.GridH != 120 {
		t.Errorf("expected 160x120 grid, got %dx%d", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Fluid.PressureIterations != 20 || cfg.Fluid.DiffusionIterations != 10 {
		t.Errorf("unexpected iteration defaults %d/%d", cfg.Fluid.PressureIterations, cfg.Fluid.DiffusionIterations)
	}
	if cfg.Derived.MaxColor != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white max colour, got %v", cfg.Derived.MaxColor)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
brush:
  precision: 10
fluid:
  diffusion_rate: 0.25
  transport: conservative
display:
  max_color: "#ff8000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Fluid.DiffusionRate != 0.25 || cfg.Fluid.Transport != "conservative" {
		t.Errorf("override not applied: %+v", cfg.Fluid)
	}
	if cfg.Brush.Radius != 10 || cfg.Screen.Width != 800 {
		t.Error("expected untouched keys to keep their defaults")
	}
	if cfg.Derived.GridW != 80 || cfg.Derived.GridH != 60 {
		t.Errorf("expected 80x60 grid at precision 10, got %dx%d", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Derived.MaxColor != (color.RGBA{255, 128, 0, 255}) {
		t.Errorf("expected orange max colour, got %v", cfg.Derived.MaxColor)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "screen: [", wantErr: "parsing config file"},
		{name: "zero precision", content: "brush:\n  precision: 0\n", wantErr: "brush.precision"},
		{name: "grid too small", content: "screen:\n  width: 20\nbrush:\n  precision: 10\n", wantErr: "smaller than 3x3"},
		{name: "negative diffusion", content: "fluid:\n  diffusion_rate: -1\n", wantErr: "diffusion_rate"},
		{name: "unknown transport", content: "fluid:\n  transport: leaky\n", wantErr: "fluid.transport"},
		{name: "unknown palette", content: "display:\n  palette: sepia\n", wantErr: "display.palette"},
		{name: "bad colour", content: "display:\n  max_color: \"#zzzzzz\"\n", wantErr: "max_color"},
		{name: "zero max dt", content: "fluid:\n  max_dt: 0\n", wantErr: "max_dt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Fluid.DiffusionRate = 0.7
	cfg.Display.Palette = "magma"
	cfg.Init.Seed = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if got.Fluid.DiffusionRate != 0.7 || got.Display.Palette != "magma" || got.Init.Seed != 1234 {
		t.Errorf("round trip lost values: %+v %+v %+v", got.Fluid, got.Display, got.Init)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#000000", want: color.RGBA{0, 0, 0, 255}},
		{in: "#00ff7f", want: color.RGBA{0, 255, 127, 255}},
		{in: "ffffff", want: color.RGBA{255, 255, 255, 255}},
		{in: "#f00", want: color.RGBA{255, 0, 0, 255}},
		{in: "blue", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseHexColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
