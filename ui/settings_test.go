package ui

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/eddy/config"
)

func TestSettingsRoundTrip(t *testing.T) {
	cfg := config.Defaults()
	s := FromConfig(cfg)

	fresh := config.Defaults()
	if err := s.Apply(fresh); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := FromConfig(fresh); got != s {
		t.Errorf("round trip changed settings:\n got %+v\nwant %+v", got, s)
	}
	if fresh.Fluid.Transport != "free" {
		t.Errorf("default transport should stay free, got %q", fresh.Fluid.Transport)
	}
}

func TestSettingsApply(t *testing.T) {
	cfg := config.Defaults()
	s := FromConfig(cfg)
	s.Width, s.Height = 640, 480
	s.MaxFPS = 144
	s.Precision = 10
	s.CreateDensityOnAdvection = false
	s.MaxColor = "#00ff00"
	s.InverseColor = true
	s.Palette = "magma"
	s.Randomize = true
	s.Smoothing = 12

	if err := s.Apply(cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if cfg.Derived.GridW != 64 || cfg.Derived.GridH != 48 {
		t.Errorf("expected 64x48 grid, got %dx%d", cfg.Derived.GridW, cfg.Derived.GridH)
	}
	if cfg.Fluid.Transport != "conservative" {
		t.Errorf("expected conservative transport, got %q", cfg.Fluid.Transport)
	}
	if cfg.Derived.MaxColor != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("max colour not re-derived: %+v", cfg.Derived.MaxColor)
	}
	if cfg.Screen.TargetFPS != 144 || !cfg.Display.Inverse || cfg.Display.Palette != "magma" {
		t.Errorf("display settings not applied: %+v %+v", cfg.Screen, cfg.Display)
	}
	if !cfg.Init.Randomize || cfg.Init.Smoothing != 12 {
		t.Errorf("init settings not applied: %+v", cfg.Init)
	}
}

func TestSettingsApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero precision", func(s *Settings) { s.Precision = 0 }},
		{"grid too small", func(s *Settings) { s.Width = 20; s.Precision = 10 }},
		{"negative diffusion", func(s *Settings) { s.DiffusionRate = -1 }},
		{"bad colour", func(s *Settings) { s.MaxColor = "#zzzzzz" }},
		{"unknown palette", func(s *Settings) { s.Palette = "sepia" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			before := *cfg
			s := FromConfig(cfg)
			tt.modify(&s)

			if err := s.Apply(cfg); err == nil {
				t.Fatal("expected error")
			}
			if *cfg != before {
				t.Error("config modified despite validation error")
			}
		})
	}
}

func TestNearestIndex(t *testing.T) {
	tests := []struct {
		v    int
		want int32
	}{
		{30, 0},
		{60, 1},
		{75, 1},
		{100, 2},
		{500, 5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := nearestIndex(FPSChoices, tt.v); got != tt.want {
			t.Errorf("nearestIndex(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := colorHex(color.RGBA{R: 255, G: 128, B: 0, A: 255}); got != "#ff8000" {
		t.Errorf("colorHex = %q, want #ff8000", got)
	}
	if got := colorHex(color.RGBA{R: 1, G: 2, B: 3}); got != "#010203" {
		t.Errorf("colorHex with zero alpha = %q, want #010203", got)
	}
}
