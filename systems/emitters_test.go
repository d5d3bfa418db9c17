package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/eddy/components"
)

func TestEmitterInjectsEveryTick(t *testing.T) {
	f := newTestFluid(t, 16, 16)
	s := NewEmitterSystem(ecs.NewWorld())
	s.Spawn(8, 8, components.Emitter{Radius: 1, Density: 1.0, VelX: 2})

	for i := 0; i < 4; i++ {
		if n := s.Update(f, 0.25); n != 5 {
			t.Fatalf("tick %d: expected 5 cells, got %d", i, n)
		}
	}

	if d := f.Density(8, 8); math.Abs(d-1.0) > 1e-12 {
		t.Errorf("expected density 1.0 after one second, got %f", d)
	}
	if vx := f.VelocityX(8, 9); math.Abs(vx-2.0) > 1e-12 {
		t.Errorf("expected vx 2.0 after one second, got %f", vx)
	}
	if s.Count() != 1 {
		t.Errorf("permanent emitter should survive, count=%d", s.Count())
	}
}

func TestEmitterExpires(t *testing.T) {
	f := newTestFluid(t, 16, 16)
	s := NewEmitterSystem(ecs.NewWorld())
	s.Spawn(4, 4, components.Emitter{Radius: 0, Density: 1, TTL: 0.5})
	s.Spawn(10, 10, components.Emitter{Radius: 0, Density: 1, TTL: 2})

	s.Update(f, 0.3)
	if s.Count() != 2 {
		t.Fatalf("expected 2 emitters after 0.3s, got %d", s.Count())
	}
	s.Update(f, 0.3)
	if s.Count() != 1 {
		t.Fatalf("expected short-lived emitter removed after 0.6s, got %d", s.Count())
	}

	before := f.Density(4, 4)
	s.Update(f, 0.3)
	if f.Density(4, 4) != before {
		t.Error("expired emitter kept injecting")
	}

	pos := s.Positions()
	if len(pos) != 1 || pos[0] != (components.Position{X: 10, Y: 10}) {
		t.Errorf("unexpected remaining positions %v", pos)
	}
}

func TestEmitterSkipsNonPositiveDt(t *testing.T) {
	f := newTestFluid(t, 10, 10)
	s := NewEmitterSystem(ecs.NewWorld())
	s.Spawn(5, 5, components.Emitter{Radius: 2, Density: 3, TTL: 0.1})

	if n := s.Update(f, 0); n != 0 {
		t.Errorf("expected no injection for dt=0, got %d", n)
	}
	if s.Count() != 1 {
		t.Error("dt=0 must not age emitters")
	}
}

func TestEmitterClear(t *testing.T) {
	s := NewEmitterSystem(ecs.NewWorld())
	for i := 0; i < 5; i++ {
		s.Spawn(float32(i+2), 3, components.Emitter{Radius: 1, Density: 1})
	}
	if s.Count() != 5 {
		t.Fatalf("expected 5 emitters, got %d", s.Count())
	}

	s.Clear()

	if s.Count() != 0 {
		t.Errorf("expected no emitters after Clear, got %d", s.Count())
	}
}

func TestEmitterAtBorderIsHarmless(t *testing.T) {
	f := newTestFluid(t, 8, 8)
	s := NewEmitterSystem(ecs.NewWorld())
	s.Spawn(0, 0, components.Emitter{Radius: 1, Density: 1})
	s.Spawn(-3, 20, components.Emitter{Radius: 1, Density: 1})

	if n := s.Update(f, 0.1); n != 0 {
		t.Errorf("expected no interior cells touched, got %d", n)
	}
}

func TestEmitterAll(t *testing.T) {
	s := NewEmitterSystem(ecs.NewWorld())
	s.Spawn(3, 4, components.Emitter{Radius: 2, Density: 0.5})
	s.Spawn(6, 7, components.Emitter{Radius: 1, Density: 1, TTL: 4})

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 emitters, got %d", len(all))
	}
	forever := 0
	for _, e := range all {
		if e.Emitter.Forever {
			forever++
			if e.Position.X != 3 || e.Emitter.Radius != 2 {
				t.Errorf("unexpected permanent emitter %+v", e)
			}
		}
	}
	if forever != 1 {
		t.Errorf("expected exactly one permanent emitter, got %d", forever)
	}
}
