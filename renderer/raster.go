package renderer

import "image/color"

// DensitySource is the read-only view the raster needs from the fluid.
type DensitySource interface {
	Width() int
	Height() int
	Density(x, y int) float64
}

// Raster is a CPU pixel buffer covering the grid at precision pixels per cell.
type Raster struct {
	W, H      int // Pixel dimensions
	Precision int
	Pix       []color.RGBA // Row-major, W*H
}

// NewRaster allocates a raster for a gridW×gridH grid.
func NewRaster(gridW, gridH, precision int) *Raster {
	if precision < 1 {
		precision = 1
	}
	w, h := gridW*precision, gridH*precision
	return &Raster{
		W:         w,
		H:         h,
		Precision: precision,
		Pix:       make([]color.RGBA, w*h),
	}
}

// Render colours every cell of src and replicates it into its pixel block.
// Cells beyond the raster are ignored.
func (r *Raster) Render(src DensitySource, cmap *Colormap) {
	p := r.Precision
	gw := min(src.Width(), r.W/p)
	gh := min(src.Height(), r.H/p)

	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			c := cmap.Color(src.Density(gx, gy))
			for py := gy * p; py < (gy+1)*p; py++ {
				row := r.Pix[py*r.W+gx*p : py*r.W+(gx+1)*p]
				for i := range row {
					row[i] = c
				}
			}
		}
	}
}

// At returns the pixel at (x, y).
func (r *Raster) At(x, y int) color.RGBA {
	return r.Pix[y*r.W+x]
}
