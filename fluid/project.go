package fluid

// EnforceIncompressibility projects the velocity field toward zero
// divergence: it computes divergence, solves the pressure Poisson equation
// with Jacobi sweeps, then subtracts the pressure gradient.
//
// Pressure is pinned to zero on the border after every sweep (open
// boundary). With a finite iteration count the result is only approximately
// divergence-free.
func (f *Fluid) EnforceIncompressibility(iterations int) {
	f.computeDivergence()
	f.solvePressure(iterations)
	f.subtractPressureGradient()
}

// computeDivergence stores the negated central-difference divergence, the
// sign the pressure solve expects.
func (f *Fluid) computeDivergence() {
	h := f.h
	vx, vy := f.velX.data, f.velY.data
	div := f.divergence.data
	for x := 1; x < f.w-1; x++ {
		for y := 1; y < h-1; y++ {
			i := x*h + y
			div[i] = -0.5 * ((vx[i+h] - vx[i-h]) + (vy[i+1] - vy[i-1]))
		}
	}
}

func (f *Fluid) solvePressure(iterations int) {
	f.pressure.Fill(0)
	f.pressureNext.Fill(0)

	src, dst := f.pressure, f.pressureNext
	h := f.h
	div := f.divergence.data
	for it := 0; it < iterations; it++ {
		s, d := src.data, dst.data
		for x := 1; x < f.w-1; x++ {
			for y := 1; y < h-1; y++ {
				i := x*h + y
				d[i] = (s[i+h] + s[i-h] + s[i+1] + s[i-1] + div[i]) / 4
			}
		}
		dst.zeroBorder()
		src, dst = dst, src
	}

	f.pressure, f.pressureNext = src, dst
}

func (f *Fluid) subtractPressureGradient() {
	h := f.h
	p := f.pressure.data
	vx, vy := f.velX.data, f.velY.data
	for x := 1; x < f.w-1; x++ {
		for y := 1; y < h-1; y++ {
			i := x*h + y
			vx[i] -= 0.5 * (p[i+h] - p[i-h])
			vy[i] -= 0.5 * (p[i+1] - p[i-1])
		}
	}
}
