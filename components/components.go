// Package components defines ECS components for the simulation.
package components

// Position is a location in grid cells.
type Position struct {
	X, Y float32
}

// Emitter is a persistent source that injects into the fluid every tick.
type Emitter struct {
	Radius  int     // Disc radius in cells
	Density float64 // Density per second
	VelX    float64 // Velocity added per second
	VelY    float64
	TTL     float32 // Remaining lifetime in seconds; <= 0 at spawn means forever
	Forever bool
}

// Expired reports whether a finite emitter has run out.
func (e *Emitter) Expired() bool {
	return !e.Forever && e.TTL <= 0
}
