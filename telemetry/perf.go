package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for one tick. The solver phases match fluid.Phase.String.
const (
	PhaseInput          = "input"
	PhaseEmitters       = "emitters"
	PhaseAdvectVelocity = "advect_velocity"
	PhaseProject        = "project"
	PhaseDiffuse        = "diffuse"
	PhaseAdvectDensity  = "advect_density"
	PhaseTelemetry      = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{
	PhaseInput, PhaseEmitters,
	PhaseAdvectVelocity, PhaseProject, PhaseDiffuse, PhaseAdvectDensity,
	PhaseTelemetry,
}

// PerfCollector keeps per-tick and per-phase durations in ring buffers
// of windowSize ticks. Not safe for concurrent use.
type PerfCollector struct {
	size  int
	next  int
	count int

	tickNS  []float64            // Tick durations in nanoseconds
	phaseNS map[string][]float64 // Per-phase rings aligned with tickNS

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 when windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		size:    windowSize,
		tickNS:  make([]float64, windowSize),
		phaseNS: make(map[string][]float64),
		current: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the running phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
		p.phase = ""
	}

	for name := range p.current {
		if _, ok := p.phaseNS[name]; !ok {
			p.phaseNS[name] = make([]float64, p.size)
		}
	}
	for name, ring := range p.phaseNS {
		ring[p.next] = float64(p.current[name])
	}
	p.tickNS[p.next] = float64(now.Sub(p.tickStart))

	p.next = (p.next + 1) % p.size
	if p.count < p.size {
		p.count++
	}
}

// RecordFrame marks a rendered frame; the gap between calls is the frame time.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Average duration and share of the average tick, per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	ticks := p.tickNS[:p.count]
	avg := stat.Mean(ticks, nil)
	sorted := append([]float64(nil), ticks...)
	sort.Float64s(sorted)

	s.AvgTickDuration = time.Duration(avg)
	s.MinTickDuration = time.Duration(floats.Min(ticks))
	s.MaxTickDuration = time.Duration(floats.Max(ticks))
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}

	for name, ring := range p.phaseNS {
		phaseAvg := stat.Mean(ring[:p.count], nil)
		s.PhaseAvg[name] = time.Duration(phaseAvg)
		if avg > 0 {
			s.PhasePct[name] = phaseAvg / avg * 100
		}
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd         int32   `csv:"window_end"`
	AvgTickUS         int64   `csv:"avg_tick_us"`
	MinTickUS         int64   `csv:"min_tick_us"`
	MaxTickUS         int64   `csv:"max_tick_us"`
	P95TickUS         int64   `csv:"p95_tick_us"`
	TicksPerSec       float64 `csv:"ticks_per_sec"`
	FPS               float64 `csv:"fps"`
	InputPct          float64 `csv:"input_pct"`
	EmittersPct       float64 `csv:"emitters_pct"`
	AdvectVelocityPct float64 `csv:"advect_velocity_pct"`
	ProjectPct        float64 `csv:"project_pct"`
	DiffusePct        float64 `csv:"diffuse_pct"`
	AdvectDensityPct  float64 `csv:"advect_density_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		AvgTickUS:         s.AvgTickDuration.Microseconds(),
		MinTickUS:         s.MinTickDuration.Microseconds(),
		MaxTickUS:         s.MaxTickDuration.Microseconds(),
		P95TickUS:         s.P95TickDuration.Microseconds(),
		TicksPerSec:       s.TicksPerSecond,
		FPS:               s.FPS,
		InputPct:          s.PhasePct[PhaseInput],
		EmittersPct:       s.PhasePct[PhaseEmitters],
		AdvectVelocityPct: s.PhasePct[PhaseAdvectVelocity],
		ProjectPct:        s.PhasePct[PhaseProject],
		DiffusePct:        s.PhasePct[PhaseDiffuse],
		AdvectDensityPct:  s.PhasePct[PhaseAdvectDensity],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
