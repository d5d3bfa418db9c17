package fluid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// patternVelocity fills the interior with a fixed, strongly divergent pattern.
func patternVelocity(f *Fluid) {
	for x := 1; x < f.Width()-1; x++ {
		for y := 1; y < f.Height()-1; y++ {
			vx := float64((x*7+y*13)%11)/5 - 1
			vy := float64((x*5+y*3)%7)/3 - 1
			f.SetVelocity(x, y, vx, vy)
		}
	}
}

func maxAbsDivergence(f *Fluid, x0, y0, x1, y1 int) float64 {
	var m float64
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			m = math.Max(m, math.Abs(f.DivergenceAt(x, y)))
		}
	}
	return m
}

// Scenario: a single horizontal impulse creates a source/sink pair either
// side of it; one projection must shrink that divergence.
func TestProjectReducesImpulseDivergence(t *testing.T) {
	f := mustNew(t, 10, 10, 0, 0)
	f.SetVelocity(5, 5, 5, 0)

	localBefore := maxAbsDivergence(f, 4, 4, 6, 6)
	normBefore := f.DivergenceNorm()
	if math.Abs(localBefore-2.5) > 1e-12 {
		t.Fatalf("expected initial local divergence 2.5, got %f", localBefore)
	}

	f.EnforceIncompressibility(20)

	localAfter := maxAbsDivergence(f, 4, 4, 6, 6)
	normAfter := f.DivergenceNorm()
	if localAfter >= localBefore {
		t.Errorf("expected local divergence below %f, got %f", localBefore, localAfter)
	}
	if normAfter >= normBefore {
		t.Errorf("expected divergence norm below %f, got %f", normBefore, normAfter)
	}
	if math.Abs(normAfter-2.2822) > 1e-3 {
		t.Errorf("expected divergence norm near 2.2822, got %f", normAfter)
	}
}

func TestProjectRepeatedCallsConverge(t *testing.T) {
	f := mustNew(t, 16, 16, 0, 0)
	patternVelocity(f)

	prev := f.DivergenceNorm()
	for i := 0; i < 8; i++ {
		f.EnforceIncompressibility(20)
		n := f.DivergenceNorm()
		if n >= prev {
			t.Fatalf("call %d: divergence norm %f did not drop below %f", i, n, prev)
		}
		prev = n
	}
}

func TestProjectMoreIterationsBeatNone(t *testing.T) {
	a := mustNew(t, 16, 16, 0, 0)
	b := mustNew(t, 16, 16, 0, 0)
	patternVelocity(a)
	patternVelocity(b)

	a.EnforceIncompressibility(0)
	b.EnforceIncompressibility(20)

	if b.DivergenceNorm() >= a.DivergenceNorm() {
		t.Errorf("expected 20 iterations (%f) to beat 0 (%f)", b.DivergenceNorm(), a.DivergenceNorm())
	}
}

func TestProjectZeroIterationsKeepsVelocity(t *testing.T) {
	f := mustNew(t, 12, 12, 0, 0)
	randomizeVelocity(f, 17)
	vx, vy := f.VelocitySnapshot()

	f.EnforceIncompressibility(0)

	gx, gy := f.VelocitySnapshot()
	if !mat.Equal(vx, gx) || !mat.Equal(vy, gy) {
		t.Error("expected velocity unchanged with zero pressure iterations")
	}
}

func TestProjectPressureBorderIsZero(t *testing.T) {
	f := mustNew(t, 12, 9, 0, 0)
	patternVelocity(f)

	f.EnforceIncompressibility(20)

	for x := 0; x < 12; x++ {
		for y := 0; y < 9; y++ {
			if f.IsInterior(x, y) {
				continue
			}
			if p := f.Pressure(x, y); p != 0 {
				t.Errorf("pressure at border (%d,%d) = %f, want 0", x, y, p)
			}
		}
	}
}

func TestProjectKeepsBorderVelocity(t *testing.T) {
	f := mustNew(t, 10, 10, 0, 0)
	for x := 0; x < 10; x++ {
		f.SetVelocity(x, 0, 1, 2)
	}
	f.SetVelocity(5, 1, 0, 8)

	f.EnforceIncompressibility(20)

	for x := 0; x < 10; x++ {
		if vx, vy := f.Velocity(x, 0); vx != 1 || vy != 2 {
			t.Errorf("border velocity (%d,0) changed to (%f,%f)", x, vx, vy)
		}
	}
}

func TestDivergenceAtRejectsBorder(t *testing.T) {
	f := mustNew(t, 6, 6, 0, 0)
	for _, c := range [][2]int{{0, 3}, {5, 3}, {3, 0}, {3, 5}, {-1, -1}} {
		x, y := c[0], c[1]
		expectIndexPanic(t, "DivergenceAt", func() { f.DivergenceAt(x, y) })
	}
}
