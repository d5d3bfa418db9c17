package fluid

import (
	"math"
	"testing"
)

func TestStatsSummary(t *testing.T) {
	f := mustNew(t, 4, 4, 0.5, 0)
	f.SetDensity(1, 1, 2.5)
	f.SetDensity(2, 2, -0.5)
	f.SetVelocity(1, 2, 3, 4)

	s := f.Stats()

	if want := 0.5*14 + 2.5 - 0.5; math.Abs(s.TotalDensity-want) > 1e-12 {
		t.Errorf("TotalDensity = %f, want %f", s.TotalDensity, want)
	}
	if s.MinDensity != -0.5 || s.MaxDensity != 2.5 {
		t.Errorf("expected range [-0.5,2.5], got [%f,%f]", s.MinDensity, s.MaxDensity)
	}
	if math.Abs(s.MeanDensity-s.TotalDensity/16) > 1e-12 {
		t.Errorf("MeanDensity = %f, want %f", s.MeanDensity, s.TotalDensity/16)
	}
	if s.MaxSpeed != 5 {
		t.Errorf("MaxSpeed = %f, want 5", s.MaxSpeed)
	}
	if s.DivergenceNorm <= 0 {
		t.Errorf("expected positive divergence norm, got %f", s.DivergenceNorm)
	}
}

func TestDivergenceAtAtRest(t *testing.T) {
	f := mustNew(t, 5, 5, 0, 0)
	if d := f.DivergenceAt(2, 2); d != 0 {
		t.Errorf("expected zero divergence at rest, got %f", d)
	}
	if n := f.DivergenceNorm(); n != 0 {
		t.Errorf("expected zero divergence norm at rest, got %f", n)
	}
}
