package main

import (
	"math"

	"github.com/pthm-cable/eddy/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Column name in the log
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64
}

// ParamVector holds the set of tunable solver parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard parameter set, with defaults taken
// from base.
func NewParamVector(base *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_iterations", Path: "fluid.pressure_iterations", Min: 1, Max: 80, Default: float64(base.Fluid.PressureIterations)},
			{Name: "diffusion_iterations", Path: "fluid.diffusion_iterations", Min: 1, Max: 40, Default: float64(base.Fluid.DiffusionIterations)},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	n := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		n[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return n
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds it to the nearest iteration count.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Round(math.Max(spec.Min, math.Min(spec.Max, v[i])))
	}
	return clamped
}

// ApplyToConfig writes the clamped values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Fluid.PressureIterations = int(c[0])
	cfg.Fluid.DiffusionIterations = int(c[1])
}
