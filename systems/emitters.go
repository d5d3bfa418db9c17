package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/eddy/components"
	"github.com/pthm-cable/eddy/fluid"
)

// EmitterSystem keeps persistent density/velocity sources as ECS entities.
type EmitterSystem struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Emitter]
	filter *ecs.Filter2[components.Position, components.Emitter]

	expired []ecs.Entity
}

// NewEmitterSystem creates an emitter system on the given world.
func NewEmitterSystem(w *ecs.World) *EmitterSystem {
	return &EmitterSystem{
		world:  w,
		mapper: ecs.NewMap2[components.Position, components.Emitter](w),
		filter: ecs.NewFilter2[components.Position, components.Emitter](w),
	}
}

// Spawn places an emitter at grid position (x, y). A TTL <= 0 makes it
// permanent.
func (s *EmitterSystem) Spawn(x, y float32, e components.Emitter) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	if e.TTL <= 0 {
		e.Forever = true
	}
	return s.mapper.NewEntity(&pos, &e)
}

// Update injects every live emitter into f, ages finite emitters by dt and
// removes the ones that ran out. Returns the number of cells touched.
func (s *EmitterSystem) Update(f *fluid.Fluid, dt float64) int {
	if dt <= 0 {
		return 0
	}

	touched := 0
	s.expired = s.expired[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, em := query.Get()

		gx, gy := int(pos.X), int(pos.Y)
		touched += f.AddDensityDisc(gx, gy, em.Radius, em.Density*dt)
		if em.VelX != 0 || em.VelY != 0 {
			f.AddVelocityDisc(gx, gy, em.Radius, em.VelX*dt, em.VelY*dt)
		}

		if !em.Forever {
			em.TTL -= float32(dt)
			if em.Expired() {
				s.expired = append(s.expired, query.Entity())
			}
		}
	}

	// Remove after iteration; the world is locked while a query is open.
	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	return touched
}

// Count returns the number of live emitters.
func (s *EmitterSystem) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Positions returns the grid positions of all live emitters.
func (s *EmitterSystem) Positions() []components.Position {
	var out []components.Position
	query := s.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		out = append(out, *pos)
	}
	return out
}

// EmitterEntry is a copy of one emitter entity's components.
type EmitterEntry struct {
	Position components.Position
	Emitter  components.Emitter
}

// All returns copies of every live emitter.
func (s *EmitterSystem) All() []EmitterEntry {
	var out []EmitterEntry
	query := s.filter.Query()
	for query.Next() {
		pos, em := query.Get()
		out = append(out, EmitterEntry{Position: *pos, Emitter: *em})
	}
	return out
}

// Clear removes every emitter.
func (s *EmitterSystem) Clear() {
	var all []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		s.world.RemoveEntity(e)
	}
}
