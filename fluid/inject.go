package fluid

// AddDensity adds v to the density at (x, y).
func (f *Fluid) AddDensity(x, y int, v float64) {
	f.density.Add(x, y, v)
}

// AddVelocity adds (vx, vy) to the velocity at (x, y).
func (f *Fluid) AddVelocity(x, y int, vx, vy float64) {
	f.velX.Add(x, y, vx)
	f.velY.Add(x, y, vy)
}

// AddDensityDisc adds amount to every interior cell within radius of
// (cx, cy). Border and off-grid cells are skipped. Returns the number of
// cells touched.
func (f *Fluid) AddDensityDisc(cx, cy, radius int, amount float64) int {
	return f.eachInDisc(cx, cy, radius, func(i int) {
		f.density.data[i] += amount
	})
}

// AddVelocityDisc adds (vx, vy) to every interior cell within radius of
// (cx, cy). Border and off-grid cells are skipped. Returns the number of
// cells touched.
func (f *Fluid) AddVelocityDisc(cx, cy, radius int, vx, vy float64) int {
	return f.eachInDisc(cx, cy, radius, func(i int) {
		f.velX.data[i] += vx
		f.velY.data[i] += vy
	})
}

func (f *Fluid) eachInDisc(cx, cy, radius int, fn func(i int)) int {
	if radius < 0 {
		radius = 0
	}
	r2 := radius * radius
	n := 0
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			x, y := cx+dx, cy+dy
			if !f.IsInterior(x, y) {
				continue
			}
			fn(x*f.h + y)
			n++
		}
	}
	return n
}
