// Package systems contains the per-tick systems that feed the fluid.
package systems

import (
	"github.com/pthm-cable/eddy/camera"
	"github.com/pthm-cable/eddy/fluid"
)

// Pointer is one sample of pointer state in screen pixels.
type Pointer struct {
	X, Y   float32
	Left   bool // Draw density
	Right  bool // Push velocity
	Middle bool // Place emitter
}

// Brush turns pointer samples into density and velocity injection.
type Brush struct {
	cam *camera.Camera

	RadiusPixels  int
	DensityRate   float64 // Density added per second under the left button
	VelocityScale float64 // Pointer px/s to velocity

	lastX, lastY float32
	hasLast      bool

	// Pointer velocity from the last Apply, in px/s
	VX, VY float64
}

// NewBrush creates a brush bound to the camera's grid mapping.
func NewBrush(cam *camera.Camera, radiusPixels int, densityRate, velocityScale float64) *Brush {
	return &Brush{
		cam:           cam,
		RadiusPixels:  radiusPixels,
		DensityRate:   densityRate,
		VelocityScale: velocityScale,
	}
}

// Apply injects into f for one tick of length dt and returns the number of
// cells touched. The pointer velocity is the screen delta since the previous
// sample divided by dt. With dt <= 0 nothing is injected, but the sample is
// still recorded so the next delta is measured from here.
func (b *Brush) Apply(f *fluid.Fluid, p Pointer, dt float64) int {
	defer b.remember(p)

	b.VX, b.VY = 0, 0
	if dt <= 0 {
		return 0
	}
	if b.hasLast {
		b.VX = float64(p.X-b.lastX) / dt
		b.VY = float64(p.Y-b.lastY) / dt
	}

	gx, gy := b.cam.ScreenToGrid(p.X, p.Y)
	if !b.cam.IsInteriorTarget(gx, gy) {
		return 0
	}
	r := b.cam.BrushRadiusCells(b.RadiusPixels)

	touched := 0
	if p.Left {
		touched += f.AddDensityDisc(gx, gy, r, b.DensityRate*dt)
	}
	if p.Right {
		touched += f.AddVelocityDisc(gx, gy, r, b.VX*b.VelocityScale, b.VY*b.VelocityScale)
	}
	return touched
}

// Reset forgets the previous sample, e.g. after the pointer left the window.
func (b *Brush) Reset() {
	b.hasLast = false
	b.VX, b.VY = 0, 0
}

func (b *Brush) remember(p Pointer) {
	b.lastX, b.lastY = p.X, p.Y
	b.hasLast = true
}
