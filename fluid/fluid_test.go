package fluid

import (
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func mustNew(t testing.TB, w, h int, start, rate float64, opts ...Option) *Fluid {
	t.Helper()
	f, err := New(w, h, start, rate, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", w, h, err)
	}
	return f
}

// randomizeVelocity fills interior velocity with values in [-1, 1).
func randomizeVelocity(f *Fluid, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for x := 1; x < f.Width()-1; x++ {
		for y := 1; y < f.Height()-1; y++ {
			f.SetVelocity(x, y, rng.Float64()*2-1, rng.Float64()*2-1)
		}
	}
}

func TestNewRejectsGridWithoutInterior(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{name: "width 2", w: 2, h: 5, wantErr: true},
		{name: "height 2", w: 5, h: 2, wantErr: true},
		{name: "empty", w: 0, h: 0, wantErr: true},
		{name: "negative", w: -4, h: 10, wantErr: true},
		{name: "smallest valid", w: 3, h: 3},
		{name: "typical", w: 160, h: 120},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(tc.w, tc.h, 0, 0.1)
			if tc.wantErr {
				if !errors.Is(err, ErrGridTooSmall) {
					t.Fatalf("expected ErrGridTooSmall, got %v", err)
				}
				if f != nil {
					t.Errorf("expected nil Fluid on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Width() != tc.w || f.Height() != tc.h {
				t.Errorf("expected %dx%d, got %dx%d", tc.w, tc.h, f.Width(), f.Height())
			}
		})
	}
}

func TestNewRejectsNegativeDiffusion(t *testing.T) {
	_, err := New(10, 10, 0, -0.5)
	if !errors.Is(err, ErrNegativeDiffusion) {
		t.Fatalf("expected ErrNegativeDiffusion, got %v", err)
	}
}

func TestNewInitialState(t *testing.T) {
	f := mustNew(t, 6, 4, 0.25, 0.1)

	for x := 0; x < 6; x++ {
		for y := 0; y < 4; y++ {
			if d := f.Density(x, y); d != 0.25 {
				t.Fatalf("density(%d,%d) = %f, want 0.25", x, y, d)
			}
			if vx, vy := f.Velocity(x, y); vx != 0 || vy != 0 {
				t.Fatalf("velocity(%d,%d) = (%f,%f), want zero", x, y, vx, vy)
			}
		}
	}
	if f.PressureIterations() != DefaultPressureIterations {
		t.Errorf("expected %d pressure iterations, got %d", DefaultPressureIterations, f.PressureIterations())
	}
	if f.DiffusionIterations() != DefaultDiffusionIterations {
		t.Errorf("expected %d diffusion iterations, got %d", DefaultDiffusionIterations, f.DiffusionIterations())
	}
	if f.Transport() != TransportFree {
		t.Errorf("expected free transport by default, got %v", f.Transport())
	}
}

// Scenario: a unit spike in the middle of a 5x5 grid spreads to its
// neighbours in one step while the corners stay untouched.
func TestStepSpreadsSpike(t *testing.T) {
	f := mustNew(t, 5, 5, 0, 0.1)
	f.AddDensity(2, 2, 1.0)

	f.Step(0.016)

	if d := f.Density(2, 2); d >= 1.0 {
		t.Errorf("expected center density to decrease, got %f", d)
	}
	for _, n := range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}} {
		if d := f.Density(n[0], n[1]); d <= 0 {
			t.Errorf("expected neighbour (%d,%d) to gain density, got %f", n[0], n[1], d)
		}
	}
	if d := f.Density(0, 0); d != 0 {
		t.Errorf("expected corner (0,0) to stay 0, got %g", d)
	}
	if d := f.Density(4, 4); d != 0 {
		t.Errorf("expected corner (4,4) to stay 0, got %g", d)
	}
}

func TestStepIsDeterministic(t *testing.T) {
	run := func() *Fluid {
		f := mustNew(t, 24, 18, 0.1, 0.05)
		f.RandomizeDensity(7, 4)
		randomizeVelocity(f, 11)
		for i, dt := range []float64{0.016, 0.02, 0.05, 0.001, 0.033} {
			f.AddDensityDisc(12, 9, 2, 0.5)
			f.AddVelocityDisc(6+i, 9, 1, 3, -1)
			f.Step(dt)
		}
		return f
	}

	a, b := run(), run()
	if !mat.Equal(a.DensitySnapshot(), b.DensitySnapshot()) {
		t.Error("density trajectories differ for identical inputs")
	}
	avx, avy := a.VelocitySnapshot()
	bvx, bvy := b.VelocitySnapshot()
	if !mat.Equal(avx, bvx) || !mat.Equal(avy, bvy) {
		t.Error("velocity trajectories differ for identical inputs")
	}
}

func TestStepPhaseOrder(t *testing.T) {
	var got []Phase
	f := mustNew(t, 8, 8, 0, 0.1, WithPhaseHook(func(p Phase) { got = append(got, p) }))

	f.Step(0.016)

	want := []Phase{PhaseAdvectVelocity, PhaseProject, PhaseDiffuse, PhaseAdvectDensity}
	if len(got) != len(want) {
		t.Fatalf("expected %d phases, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phase %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestStepAtRestWithoutDiffusionIsIdentity(t *testing.T) {
	f := mustNew(t, 12, 9, 0.3, 0)
	f.RandomizeDensity(3, 2)
	before := f.DensitySnapshot()

	for i := 0; i < 5; i++ {
		f.Step(0.05)
	}

	if !mat.Equal(before, f.DensitySnapshot()) {
		t.Error("expected density unchanged with zero velocity and zero diffusion")
	}
}

func TestOptions(t *testing.T) {
	f := mustNew(t, 5, 5, 0, 0.1,
		WithTransport(TransportConservative),
		WithPressureIterations(40),
		WithDiffusionIterations(3),
	)
	if f.Transport() != TransportConservative {
		t.Errorf("expected conservative transport, got %v", f.Transport())
	}
	if f.PressureIterations() != 40 || f.DiffusionIterations() != 3 {
		t.Errorf("expected 40/3 iterations, got %d/%d", f.PressureIterations(), f.DiffusionIterations())
	}

	g := mustNew(t, 5, 5, 0, 0.1, WithPressureIterations(-1))
	if g.PressureIterations() != DefaultPressureIterations {
		t.Errorf("negative iteration override should be ignored, got %d", g.PressureIterations())
	}
}

func TestParseTransport(t *testing.T) {
	tests := []struct {
		in      string
		want    Transport
		wantErr bool
	}{
		{in: "", want: TransportFree},
		{in: "free", want: TransportFree},
		{in: " Conservative ", want: TransportConservative},
		{in: "lossy", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseTransport(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseTransport(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseTransport(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReset(t *testing.T) {
	f := mustNew(t, 10, 10, 0.2, 0.1)
	f.AddDensityDisc(5, 5, 2, 1)
	f.AddVelocityDisc(5, 5, 2, 4, 4)
	f.Step(0.02)

	f.Reset()

	s := f.Stats()
	if s.MinDensity != 0.2 || s.MaxDensity != 0.2 {
		t.Errorf("expected uniform 0.2 density after reset, got [%f, %f]", s.MinDensity, s.MaxDensity)
	}
	if s.MaxSpeed != 0 {
		t.Errorf("expected zero velocity after reset, got max speed %f", s.MaxSpeed)
	}
}

func BenchmarkStep(b *testing.B) {
	f := mustNew(b, 160, 120, 0.1, 0.1)
	f.RandomizeDensity(1, 8)
	randomizeVelocity(f, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Step(1.0 / 60.0)
	}
}
