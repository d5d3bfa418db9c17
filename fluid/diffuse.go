package fluid

// DiffuseDensity relaxes density toward the implicit (backward Euler)
// diffusion solution with a fixed number of passes. Each pass reads the full
// previous pass, so neighbours updated earlier in the same pass are never
// seen. Border cells are not diffused.
//
// The implicit form is stable for any non-negative rate*dt; more iterations
// get closer to the exact implicit solution.
func (f *Fluid) DiffuseDensity(dt float64, iterations int) {
	a := f.diffusionRate * dt
	if a == 0 || iterations <= 0 {
		return
	}
	denom := 1 + 4*a

	src, dst := f.density, f.densityNext
	dst.copyFrom(src)

	h := f.h
	for it := 0; it < iterations; it++ {
		s, d := src.data, dst.data
		for x := 1; x < f.w-1; x++ {
			row := x * h
			for y := 1; y < h-1; y++ {
				i := row + y
				d[i] = (s[i] + a*(s[i+h]+s[i-h]+s[i+1]+s[i-1])) / denom
			}
		}
		src, dst = dst, src
	}

	f.density, f.densityNext = src, dst
}
