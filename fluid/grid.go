// Package fluid implements a 2D grid fluid solver: implicit density diffusion,
// semi-Lagrangian advection and pressure projection on a fixed W×H grid.
//
// A Fluid is not safe for concurrent use. Callers inject density and velocity
// between Step calls, never during one.
package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IndexError is the panic value raised by bounds-checked accessors.
type IndexError struct {
	X, Y int
	W, H int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("fluid: index (%d,%d) out of range for %dx%d grid", e.X, e.Y, e.W, e.H)
}

// Field is a W×H scalar grid backed by a gonum dense matrix.
// Rows are indexed by x and columns by y, so the raw data is x-major (x*H + y).
type Field struct {
	W, H int
	m    *mat.Dense
	data []float64
}

// NewField allocates a w×h field with every cell set to fill.
func NewField(w, h int, fill float64) *Field {
	m := mat.NewDense(w, h, nil)
	f := &Field{W: w, H: h, m: m, data: m.RawMatrix().Data}
	if fill != 0 {
		f.Fill(fill)
	}
	return f
}

// At returns the value at (x, y). Panics with *IndexError when out of range.
func (f *Field) At(x, y int) float64 {
	f.check(x, y)
	return f.data[x*f.H+y]
}

// Set stores v at (x, y). Panics with *IndexError when out of range.
func (f *Field) Set(x, y int, v float64) {
	f.check(x, y)
	f.data[x*f.H+y] = v
}

// Add adds v to the value at (x, y). Panics with *IndexError when out of range.
func (f *Field) Add(x, y int, v float64) {
	f.check(x, y)
	f.data[x*f.H+y] += v
}

// Fill sets every cell to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Sum returns the sum over all cells.
func (f *Field) Sum() float64 {
	return floats.Sum(f.data)
}

// Matrix exposes the field as a read-only gonum matrix view.
func (f *Field) Matrix() mat.Matrix {
	return f.m
}

// InBounds reports whether (x, y) addresses a cell of the field.
func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && x < f.W && y >= 0 && y < f.H
}

func (f *Field) check(x, y int) {
	if !f.InBounds(x, y) {
		panic(&IndexError{X: x, Y: y, W: f.W, H: f.H})
	}
}

func (f *Field) copyFrom(src *Field) {
	copy(f.data, src.data)
}

// interiorSum sums cells in [1,W-2]×[1,H-2].
func (f *Field) interiorSum() float64 {
	var sum float64
	for x := 1; x < f.W-1; x++ {
		row := x * f.H
		sum += floats.Sum(f.data[row+1 : row+f.H-1])
	}
	return sum
}

// zeroBorder pins the outer rows and columns to zero.
func (f *Field) zeroBorder() {
	h := f.H
	last := (f.W - 1) * h
	for y := 0; y < h; y++ {
		f.data[y] = 0
		f.data[last+y] = 0
	}
	for x := 0; x < f.W; x++ {
		f.data[x*h] = 0
		f.data[x*h+h-1] = 0
	}
}

// Density returns the density at (x, y).
func (f *Fluid) Density(x, y int) float64 {
	return f.density.At(x, y)
}

// SetDensity overwrites the density at (x, y).
func (f *Fluid) SetDensity(x, y int, v float64) {
	f.density.Set(x, y, v)
}

// VelocityX returns the x component of velocity at (x, y).
func (f *Fluid) VelocityX(x, y int) float64 {
	return f.velX.At(x, y)
}

// VelocityY returns the y component of velocity at (x, y).
func (f *Fluid) VelocityY(x, y int) float64 {
	return f.velY.At(x, y)
}

// Velocity returns both velocity components at (x, y).
func (f *Fluid) Velocity(x, y int) (vx, vy float64) {
	return f.velX.At(x, y), f.velY.At(x, y)
}

// SetVelocity overwrites both velocity components at (x, y).
func (f *Fluid) SetVelocity(x, y int, vx, vy float64) {
	f.velX.Set(x, y, vx)
	f.velY.Set(x, y, vy)
}

// Pressure returns the pressure left by the last projection at (x, y).
// The value is working state and is only meaningful right after
// EnforceIncompressibility.
func (f *Fluid) Pressure(x, y int) float64 {
	return f.pressure.At(x, y)
}

// InBounds reports whether (x, y) addresses a grid cell.
func (f *Fluid) InBounds(x, y int) bool {
	return f.density.InBounds(x, y)
}

// IsInterior reports whether (x, y) lies in [1,W-2]×[1,H-2].
func (f *Fluid) IsInterior(x, y int) bool {
	return x >= 1 && x < f.w-1 && y >= 1 && y < f.h-1
}

// DensityMatrix returns a read-only view of the current density buffer.
// The view is invalidated by the next Step, which swaps buffers.
func (f *Fluid) DensityMatrix() mat.Matrix {
	return f.density.Matrix()
}

// DensitySnapshot returns a copy of the density field.
func (f *Fluid) DensitySnapshot() *mat.Dense {
	return mat.DenseCopyOf(f.density.m)
}

// VelocitySnapshot returns copies of both velocity components.
func (f *Fluid) VelocitySnapshot() (vx, vy *mat.Dense) {
	return mat.DenseCopyOf(f.velX.m), mat.DenseCopyOf(f.velY.m)
}

// DensityValues returns a copy of the density data in x-major order
// (index x*Height+y).
func (f *Fluid) DensityValues() []float64 {
	out := make([]float64, len(f.density.data))
	copy(out, f.density.data)
	return out
}
