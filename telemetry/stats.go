package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// WindowStats holds aggregated statistics for a window of simulation time.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Ticks           int     `csv:"ticks"`
	MeanDT          float64 `csv:"mean_dt"`

	// Density field at window end
	TotalDensity float64 `csv:"total_density"`
	MinDensity   float64 `csv:"min_density"`
	MaxDensity   float64 `csv:"max_density"`
	MeanDensity  float64 `csv:"mean_density"`
	DensityP10   float64 `csv:"density_p10"`
	DensityP50   float64 `csv:"density_p50"`
	DensityP90   float64 `csv:"density_p90"`

	// Flow at window end
	MaxSpeed       float64 `csv:"max_speed"`
	DivergenceNorm float64 `csv:"divergence_norm"`

	// Injection during window
	BrushCells   int `csv:"brush_cells"`
	EmitterCells int `csv:"emitter_cells"`
	Emitters     int `csv:"emitters"`

	// Change in total density over the window
	DensityDrift float64 `csv:"density_drift"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
// values is not modified.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = floats.Sum(values) / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ticks", s.Ticks),
		slog.Float64("mean_dt", s.MeanDT),
		slog.Float64("total_density", s.TotalDensity),
		slog.Float64("min_density", s.MinDensity),
		slog.Float64("max_density", s.MaxDensity),
		slog.Float64("mean_density", s.MeanDensity),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("divergence_norm", s.DivergenceNorm),
		slog.Int("brush_cells", s.BrushCells),
		slog.Int("emitter_cells", s.EmitterCells),
		slog.Int("emitters", s.Emitters),
		slog.Float64("density_drift", s.DensityDrift),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
