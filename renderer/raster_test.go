package renderer

import (
	"image/color"
	"testing"
)

type fakeDensity struct {
	w, h int
	d    map[[2]int]float64
}

func (f fakeDensity) Width() int  { return f.w }
func (f fakeDensity) Height() int { return f.h }
func (f fakeDensity) Density(x, y int) float64 {
	return f.d[[2]int{x, y}]
}

func TestColormapLinear(t *testing.T) {
	maxColor := color.RGBA{200, 100, 50, 255}
	cmap, err := NewColormap("linear", maxColor, false)
	if err != nil {
		t.Fatalf("NewColormap: %v", err)
	}

	tests := []struct {
		d    float64
		want color.RGBA
	}{
		{0, color.RGBA{0, 0, 0, 255}},
		{1, maxColor},
		{0.5, color.RGBA{100, 50, 25, 255}},
		{-3, color.RGBA{0, 0, 0, 255}},
		{7, maxColor},
	}
	for _, tc := range tests {
		if got := cmap.Color(tc.d); got != tc.want {
			t.Errorf("Color(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestColormapInverse(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	cmap, err := NewColormap("", white, true)
	if err != nil {
		t.Fatalf("NewColormap: %v", err)
	}

	if got := cmap.Color(0); got != white {
		t.Errorf("inverse of empty cell should be the max colour, got %v", got)
	}
	if got := cmap.Color(1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("inverse of full cell should be black, got %v", got)
	}
}

func TestColormapGradients(t *testing.T) {
	for _, name := range []string{"viridis", "inferno", "magma", "plasma", "turbo", " Viridis "} {
		t.Run(name, func(t *testing.T) {
			cmap, err := NewColormap(name, color.RGBA{}, false)
			if err != nil {
				t.Fatalf("NewColormap: %v", err)
			}
			lo, hi := cmap.Color(0), cmap.Color(1)
			if lo == hi {
				t.Errorf("expected gradient ends to differ, both %v", lo)
			}
			if lo.A != 255 || hi.A != 255 {
				t.Error("expected opaque colours")
			}
		})
	}

	if _, err := NewColormap("sepia", color.RGBA{}, false); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestRasterReplicatesCells(t *testing.T) {
	cmap, _ := NewColormap("linear", color.RGBA{255, 255, 255, 255}, false)
	src := fakeDensity{w: 3, h: 2, d: map[[2]int]float64{{1, 0}: 1, {2, 1}: 0.5}}

	r := NewRaster(3, 2, 4)
	if r.W != 12 || r.H != 8 || len(r.Pix) != 96 {
		t.Fatalf("unexpected raster size %dx%d (%d px)", r.W, r.H, len(r.Pix))
	}

	r.Render(src, cmap)

	white := color.RGBA{255, 255, 255, 255}
	grey := color.RGBA{127, 127, 127, 255}
	black := color.RGBA{0, 0, 0, 255}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			want := black
			switch {
			case x/4 == 1 && y/4 == 0:
				want = white
			case x/4 == 2 && y/4 == 1:
				want = grey
			}
			if got := r.At(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRasterIgnoresOversizedSource(t *testing.T) {
	cmap, _ := NewColormap("linear", color.RGBA{255, 255, 255, 255}, false)
	src := fakeDensity{w: 10, h: 10, d: map[[2]int]float64{{0, 0}: 1}}

	r := NewRaster(2, 2, 1)
	r.Render(src, cmap)

	if r.At(0, 0) != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white origin, got %v", r.At(0, 0))
	}
}
