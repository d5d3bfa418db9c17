package game

import (
	"github.com/pthm-cable/eddy/camera"
	"github.com/pthm-cable/eddy/components"
	"github.com/pthm-cable/eddy/systems"
)

// emitterFromBrush builds a permanent emitter matching the brush footprint.
// It injects the brush density rate and the current pointer velocity.
func emitterFromBrush(b *systems.Brush, cam *camera.Camera) components.Emitter {
	return components.Emitter{
		Radius:  cam.BrushRadiusCells(b.RadiusPixels),
		Density: b.DensityRate,
		VelX:    b.VX * b.VelocityScale,
		VelY:    b.VY * b.VelocityScale,
	}
}
