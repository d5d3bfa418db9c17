// Package renderer turns fluid density into pixels.
package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/mazznoer/colorgrad"
)

const lutSize = 256

// Colormap maps density to colour. The linear palette scales a single max
// colour by density; named palettes sample a colorgrad preset.
type Colormap struct {
	palette  string
	maxColor color.RGBA
	inverse  bool
	lut      []color.RGBA // nil for the linear palette
}

// NewColormap builds a colormap for one of the config palettes.
func NewColormap(palette string, maxColor color.RGBA, inverse bool) (*Colormap, error) {
	palette = strings.ToLower(strings.TrimSpace(palette))
	if palette == "" {
		palette = "linear"
	}

	c := &Colormap{palette: palette, maxColor: maxColor, inverse: inverse}
	if palette == "linear" {
		return c, nil
	}

	var grad colorgrad.Gradient
	switch palette {
	case "viridis":
		grad = colorgrad.Viridis()
	case "inferno":
		grad = colorgrad.Inferno()
	case "magma":
		grad = colorgrad.Magma()
	case "plasma":
		grad = colorgrad.Plasma()
	case "turbo":
		grad = colorgrad.Turbo()
	default:
		return nil, fmt.Errorf("unknown palette %q", palette)
	}

	c.lut = make([]color.RGBA, 0, lutSize)
	for _, col := range grad.Colors(lutSize) {
		r, g, b, _ := col.RGBA()
		c.lut = append(c.lut, color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255})
	}
	return c, nil
}

// Palette returns the palette name.
func (c *Colormap) Palette() string { return c.palette }

// Color returns the colour for density d. Density is clamped to [0, 1].
func (c *Colormap) Color(d float64) color.RGBA {
	t := clamp01(d)
	if c.inverse {
		t = 1 - t
	}

	if c.lut != nil {
		return c.lut[int(t*(lutSize-1)+0.5)]
	}
	return color.RGBA{
		R: uint8(float64(c.maxColor.R) * t),
		G: uint8(float64(c.maxColor.G) * t),
		B: uint8(float64(c.maxColor.B) * t),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
