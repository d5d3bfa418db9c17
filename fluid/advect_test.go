package fluid

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func randomField(w, h int, seed int64) *Field {
	rng := rand.New(rand.NewSource(seed))
	fld := NewField(w, h, 0)
	for i := range fld.data {
		fld.data[i] = rng.Float64()*4 - 2
	}
	return fld
}

func TestSampleFieldExactAtIntegers(t *testing.T) {
	fld := randomField(7, 5, 1)

	for x := 0; x < 7; x++ {
		for y := 0; y < 5; y++ {
			if got, want := SampleField(fld, float64(x), float64(y)), fld.At(x, y); got != want {
				t.Errorf("SampleField(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSampleFieldStaysWithinCorners(t *testing.T) {
	fld := randomField(9, 6, 2)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 2000; i++ {
		x := rng.Float64()*15 - 3
		y := rng.Float64()*12 - 3

		x0 := int(math.Min(math.Max(math.Floor(x), 0), 8))
		y0 := int(math.Min(math.Max(math.Floor(y), 0), 5))
		x1 := min(x0+1, 8)
		y1 := min(y0+1, 5)
		corners := []float64{fld.At(x0, y0), fld.At(x1, y0), fld.At(x0, y1), fld.At(x1, y1)}
		lo, hi := corners[0], corners[0]
		for _, c := range corners[1:] {
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}

		v := SampleField(fld, x, y)
		const eps = 1e-12
		if v < lo-eps || v > hi+eps {
			t.Fatalf("SampleField(%f,%f) = %f outside corner range [%f,%f]", x, y, v, lo, hi)
		}
	}
}

func TestSampleFieldBilinearMidpoint(t *testing.T) {
	fld := NewField(2, 2, 0)
	fld.Set(0, 0, 0)
	fld.Set(1, 0, 1)
	fld.Set(0, 1, 2)
	fld.Set(1, 1, 3)

	tests := []struct {
		x, y, want float64
	}{
		{0.5, 0.5, 1.5},
		{0.5, 0, 0.5},
		{0, 0.5, 1},
		{0.25, 0.75, 1.75},
		{5, 5, 3}, // clamped to the last cell
	}
	for _, tc := range tests {
		if got := SampleField(fld, tc.x, tc.y); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("SampleField(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestAdvectAtRestIsIdentity(t *testing.T) {
	f := mustNew(t, 14, 10, 0.4, 0.1)
	f.RandomizeDensity(5, 2)
	density := f.DensitySnapshot()

	f.AdvectDensity(0.5)
	f.AdvectVelocity(0.5)

	if !mat.Equal(density, f.DensitySnapshot()) {
		t.Error("expected density unchanged by advection through zero velocity")
	}
	vx, vy := f.VelocitySnapshot()
	zero := mat.NewDense(14, 10, nil)
	if !mat.Equal(vx, zero) || !mat.Equal(vy, zero) {
		t.Error("expected velocity to stay zero")
	}
}

func TestAdvectDensityUniformFlow(t *testing.T) {
	f := mustNew(t, 8, 8, 0, 0)
	for x := 1; x < 7; x++ {
		for y := 1; y < 7; y++ {
			f.SetVelocity(x, y, 1, 0)
		}
	}
	f.SetDensity(3, 4, 1)

	f.AdvectDensity(1)

	if d := f.Density(4, 4); d != 1 {
		t.Errorf("expected density to move to (4,4), got %f", d)
	}
	if d := f.Density(3, 4); d != 0 {
		t.Errorf("expected (3,4) to be emptied, got %f", d)
	}
}

func TestAdvectVelocitySamplesOldField(t *testing.T) {
	f := mustNew(t, 10, 10, 0, 0)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			f.SetVelocity(x, y, 2, 0)
		}
	}
	f.SetVelocity(3, 5, 2, 5)

	f.AdvectVelocity(0.5)

	if vx, vy := f.Velocity(4, 5); vx != 2 || vy != 5 {
		t.Errorf("expected perturbation carried to (4,5), got (%f,%f)", vx, vy)
	}
	if vy := f.VelocityY(3, 5); vy != 0 {
		t.Errorf("expected perturbation to leave (3,5), got vy=%f", vy)
	}
}

func TestAdvectKeepsBorder(t *testing.T) {
	f := mustNew(t, 10, 8, 0, 0)
	for x := 0; x < 10; x++ {
		f.SetDensity(x, 0, float64(x))
	}
	randomizeVelocity(f, 9)
	f.AddVelocityDisc(5, 4, 3, 20, 20)
	f.AddDensityDisc(5, 4, 2, 1)

	f.AdvectDensity(0.2)
	f.AdvectVelocity(0.2)

	for x := 0; x < 10; x++ {
		if d := f.Density(x, 0); d != float64(x) {
			t.Errorf("border density (%d,0) changed to %f", x, d)
		}
		if vx, vy := f.Velocity(x, 7); vx != 0 || vy != 0 {
			t.Errorf("border velocity (%d,7) changed to (%f,%f)", x, vx, vy)
		}
	}
}

func TestConservativeTransportPreservesMass(t *testing.T) {
	f := mustNew(t, 16, 12, 0.5, 0, WithTransport(TransportConservative))
	f.RandomizeDensity(21, 3)
	randomizeVelocity(f, 22)
	f.AddVelocityDisc(8, 6, 4, 15, -10)

	before := f.Stats().TotalDensity
	for i := 0; i < 10; i++ {
		f.AdvectDensity(0.1)
	}
	after := f.Stats().TotalDensity

	if math.Abs(after-before) > 1e-9*before {
		t.Errorf("expected conserved total density %f, got %f", before, after)
	}
}

func TestConservativeTransportAtRestIsIdentity(t *testing.T) {
	f := mustNew(t, 9, 9, 0.5, 0, WithTransport(TransportConservative))
	f.RandomizeDensity(4, 2)
	before := f.DensitySnapshot()

	f.AdvectDensity(0.1)

	if !mat.Equal(before, f.DensitySnapshot()) {
		t.Error("expected conservative advection at rest to leave density unchanged")
	}
}
