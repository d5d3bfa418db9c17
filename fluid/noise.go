package fluid

import "github.com/ojrac/opensimplex-go"

// RandomizeDensity replaces the density field with smooth OpenSimplex noise.
// smoothing is the noise feature size in cells (values below 1 act as 1).
// Values are scaled to [0, StartDensity), or [0, 1) when the start density
// is zero. The same seed always produces the same field.
func (f *Fluid) RandomizeDensity(seed int64, smoothing float64) {
	if smoothing < 1 {
		smoothing = 1
	}
	scale := f.startDensity
	if scale <= 0 {
		scale = 1
	}

	noise := opensimplex.NewNormalized(seed)
	h := f.h
	d := f.density.data
	for x := 0; x < f.w; x++ {
		for y := 0; y < h; y++ {
			d[x*h+y] = noise.Eval2(float64(x)/smoothing, float64(y)/smoothing) * scale
		}
	}
}
