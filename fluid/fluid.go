package fluid

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Solver defaults used by Step.
const (
	DefaultPressureIterations  = 20
	DefaultDiffusionIterations = 10

	// MinGridSize is the smallest width or height that still has interior cells.
	MinGridSize = 3
)

var (
	ErrGridTooSmall      = errors.New("fluid: grid must be at least 3x3")
	ErrNegativeDiffusion = errors.New("fluid: diffusion rate must be non-negative")
)

// Transport selects how density advection treats mass.
type Transport int

const (
	// TransportFree samples density along the flow without correction, so
	// mass can appear or vanish near the borders.
	TransportFree Transport = iota
	// TransportConservative rescales the interior after each density
	// advection so the interior sum matches its value before the pass.
	TransportConservative
)

func (t Transport) String() string {
	switch t {
	case TransportFree:
		return "free"
	case TransportConservative:
		return "conservative"
	}
	return fmt.Sprintf("Transport(%d)", int(t))
}

// ParseTransport converts a configuration name into a Transport.
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free":
		return TransportFree, nil
	case "conservative":
		return TransportConservative, nil
	}
	return TransportFree, fmt.Errorf("fluid: unknown transport %q", s)
}

// Phase identifies a stage of the Step pipeline.
type Phase int

const (
	PhaseAdvectVelocity Phase = iota
	PhaseProject
	PhaseDiffuse
	PhaseAdvectDensity
)

func (p Phase) String() string {
	switch p {
	case PhaseAdvectVelocity:
		return "advect_velocity"
	case PhaseProject:
		return "project"
	case PhaseDiffuse:
		return "diffuse"
	case PhaseAdvectDensity:
		return "advect_density"
	}
	return "unknown"
}

// Option configures a Fluid at construction.
type Option func(*Fluid)

// WithTransport selects free or conservative density transport.
func WithTransport(t Transport) Option {
	return func(f *Fluid) { f.transport = t }
}

// WithPressureIterations overrides the Jacobi sweep count used by Step.
func WithPressureIterations(n int) Option {
	return func(f *Fluid) {
		if n >= 0 {
			f.pressureIters = n
		}
	}
}

// WithDiffusionIterations overrides the relaxation pass count used by Step.
func WithDiffusionIterations(n int) Option {
	return func(f *Fluid) {
		if n >= 0 {
			f.diffusionIters = n
		}
	}
}

// WithPhaseHook registers a callback invoked synchronously before each
// stage of Step. Used for per-phase timing.
func WithPhaseHook(hook func(Phase)) Option {
	return func(f *Fluid) { f.phaseHook = hook }
}

// Fluid owns every field of one simulation.
type Fluid struct {
	w, h          int
	startDensity  float64
	diffusionRate float64

	transport      Transport
	pressureIters  int
	diffusionIters int
	phaseHook      func(Phase)

	density    *Field
	velX, velY *Field
	pressure   *Field
	divergence *Field

	// Scratch buffers for double-buffered passes; swapped with the live
	// field after each full pass.
	densityNext  *Field
	velXNext     *Field
	velYNext     *Field
	pressureNext *Field
}

// New allocates a width×height simulation with density initialized to
// startDensity and zero velocity. The diffusion rate is fixed for the
// lifetime of the Fluid.
func New(width, height int, startDensity, diffusionRate float64, opts ...Option) (*Fluid, error) {
	if width < MinGridSize || height < MinGridSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, width, height)
	}
	if diffusionRate < 0 || math.IsNaN(diffusionRate) {
		return nil, fmt.Errorf("%w: got %g", ErrNegativeDiffusion, diffusionRate)
	}

	f := &Fluid{
		w:              width,
		h:              height,
		startDensity:   startDensity,
		diffusionRate:  diffusionRate,
		transport:      TransportFree,
		pressureIters:  DefaultPressureIterations,
		diffusionIters: DefaultDiffusionIterations,

		density:    NewField(width, height, startDensity),
		velX:       NewField(width, height, 0),
		velY:       NewField(width, height, 0),
		pressure:   NewField(width, height, 0),
		divergence: NewField(width, height, 0),

		densityNext:  NewField(width, height, startDensity),
		velXNext:     NewField(width, height, 0),
		velYNext:     NewField(width, height, 0),
		pressureNext: NewField(width, height, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Width returns the grid width in cells.
func (f *Fluid) Width() int { return f.w }

// Height returns the grid height in cells.
func (f *Fluid) Height() int { return f.h }

// StartDensity returns the density every cell was initialized with.
func (f *Fluid) StartDensity() float64 { return f.startDensity }

// DiffusionRate returns the fixed diffusion rate.
func (f *Fluid) DiffusionRate() float64 { return f.diffusionRate }

// Transport returns the density transport mode.
func (f *Fluid) Transport() Transport { return f.transport }

// PressureIterations returns the Jacobi sweep count used by Step.
func (f *Fluid) PressureIterations() int { return f.pressureIters }

// DiffusionIterations returns the relaxation pass count used by Step.
func (f *Fluid) DiffusionIterations() int { return f.diffusionIters }

// Step advances the simulation by dt seconds. The order matters: velocity
// is projected before density is advected through it, otherwise density
// picks up compression artifacts from the divergent field.
//
// dt must be finite and non-negative. Large values degrade accuracy but not
// stability; callers typically clamp dt to ~0.05s.
func (f *Fluid) Step(dt float64) {
	f.enter(PhaseAdvectVelocity)
	f.AdvectVelocity(dt)

	f.enter(PhaseProject)
	f.EnforceIncompressibility(f.pressureIters)

	f.enter(PhaseDiffuse)
	f.DiffuseDensity(dt, f.diffusionIters)

	f.enter(PhaseAdvectDensity)
	f.AdvectDensity(dt)
}

func (f *Fluid) enter(p Phase) {
	if f.phaseHook != nil {
		f.phaseHook(p)
	}
}

// Reset restores the initial state: uniform start density, zero velocity
// and cleared working fields.
func (f *Fluid) Reset() {
	f.density.Fill(f.startDensity)
	f.densityNext.Fill(f.startDensity)
	for _, fld := range []*Field{f.velX, f.velY, f.pressure, f.divergence, f.velXNext, f.velYNext, f.pressureNext} {
		fld.Fill(0)
	}
}
