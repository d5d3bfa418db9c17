package fluid

import "math"

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// SampleField bilinearly interpolates fld at the continuous position (x, y).
// Base indices are clamped to the grid and the upper neighbour to the last
// row/column, so the result always stays within the range of the four
// blended corners. Integer coordinates return the stored value exactly.
func SampleField(fld *Field, x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)

	x0 := int(math.Min(math.Max(fx, 0), float64(fld.W-1)))
	y0 := int(math.Min(math.Max(fy, 0), float64(fld.H-1)))
	x1 := min(x0+1, fld.W-1)
	y1 := min(y0+1, fld.H-1)

	sx := x - fx
	sy := y - fy

	h := fld.H
	v00 := fld.data[x0*h+y0]
	v10 := fld.data[x1*h+y0]
	v01 := fld.data[x0*h+y1]
	v11 := fld.data[x1*h+y1]

	a := lerp(v00, v10, sx)
	b := lerp(v01, v11, sx)
	return lerp(a, b, sy)
}

// AdvectDensity transports density along the current velocity by tracing
// each interior cell backward and sampling the old field there.
func (f *Fluid) AdvectDensity(dt float64) {
	var before float64
	if f.transport == TransportConservative {
		before = f.density.interiorSum()
	}

	f.advectInto(f.density, f.densityNext, dt)
	f.density, f.densityNext = f.densityNext, f.density

	if f.transport == TransportConservative {
		f.conserveInterior(before)
	}
}

// AdvectVelocity transports both velocity components along the velocity
// itself. Both components sample the pre-advection field.
func (f *Fluid) AdvectVelocity(dt float64) {
	f.advectInto(f.velX, f.velXNext, dt)
	f.advectInto(f.velY, f.velYNext, dt)

	f.velX, f.velXNext = f.velXNext, f.velX
	f.velY, f.velYNext = f.velYNext, f.velY
}

// advectInto writes src advected by the current velocity into dst.
// Border cells of dst keep the values of src.
func (f *Fluid) advectInto(src, dst *Field, dt float64) {
	dst.copyFrom(src)

	h := f.h
	vx, vy := f.velX.data, f.velY.data
	out := dst.data
	for x := 1; x < f.w-1; x++ {
		for y := 1; y < h-1; y++ {
			i := x*h + y
			px := float64(x) - vx[i]*dt
			py := float64(y) - vy[i]*dt
			out[i] = SampleField(src, px, py)
		}
	}
}

// conserveInterior rescales interior density so it sums to target.
func (f *Fluid) conserveInterior(target float64) {
	after := f.density.interiorSum()
	if after == 0 || after == target {
		return
	}
	k := target / after

	h := f.h
	d := f.density.data
	for x := 1; x < f.w-1; x++ {
		for y := 1; y < h-1; y++ {
			d[x*h+y] *= k
		}
	}
}
