package fluid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarizes the current state of a Fluid.
type Stats struct {
	TotalDensity   float64
	MinDensity     float64
	MaxDensity     float64
	MeanDensity    float64
	MaxSpeed       float64
	DivergenceNorm float64
}

// DivergenceAt returns the central-difference divergence of the current
// velocity at interior cell (x, y), using the projector's sign convention.
// Panics with *IndexError for non-interior cells.
func (f *Fluid) DivergenceAt(x, y int) float64 {
	if !f.IsInterior(x, y) {
		panic(&IndexError{X: x, Y: y, W: f.w, H: f.h})
	}
	h := f.h
	i := x*h + y
	vx, vy := f.velX.data, f.velY.data
	return -0.5 * ((vx[i+h] - vx[i-h]) + (vy[i+1] - vy[i-1]))
}

// DivergenceNorm returns the L2 norm of the divergence over interior cells.
func (f *Fluid) DivergenceNorm() float64 {
	vals := make([]float64, 0, (f.w-2)*(f.h-2))
	for x := 1; x < f.w-1; x++ {
		for y := 1; y < f.h-1; y++ {
			vals = append(vals, f.DivergenceAt(x, y))
		}
	}
	return floats.Norm(vals, 2)
}

// Stats computes density and flow statistics over the whole grid.
func (f *Fluid) Stats() Stats {
	d := f.density.data
	total := floats.Sum(d)

	var maxSpeed float64
	vx, vy := f.velX.data, f.velY.data
	for i := range vx {
		if s := math.Hypot(vx[i], vy[i]); s > maxSpeed {
			maxSpeed = s
		}
	}

	return Stats{
		TotalDensity:   total,
		MinDensity:     floats.Min(d),
		MaxDensity:     floats.Max(d),
		MeanDensity:    total / float64(len(d)),
		MaxSpeed:       maxSpeed,
		DivergenceNorm: f.DivergenceNorm(),
	}
}
