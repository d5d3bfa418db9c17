package telemetry

import "github.com/pthm-cable/eddy/fluid"

// Collector accumulates per-tick events over a window of simulation time
// and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick  int32
	windowStartTime  float64
	startDensity     float64
	haveStartDensity bool

	simTime float64

	// Counters for current window
	ticks        int
	dtSum        float64
	brushCells   int
	emitterCells int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordTick advances simulation time by dt and records injection counts.
func (c *Collector) RecordTick(dt float64, brushCells, emitterCells int) {
	c.simTime += dt
	c.ticks++
	c.dtSum += dt
	c.brushCells += brushCells
	c.emitterCells += emitterCells
}

// Begin records the total density at the start of a window.
func (c *Collector) Begin(totalDensity float64) {
	if !c.haveStartDensity {
		c.startDensity = totalDensity
		c.haveStartDensity = true
	}
}

// SimTime returns the accumulated simulation time in seconds.
func (c *Collector) SimTime() float64 {
	return c.simTime
}

// ShouldFlush returns true once the window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.ticks > 0 && c.simTime-c.windowStartTime >= c.windowDurationSec
}

// Flush produces a WindowStats from the current field and resets counters
// for the next window. densities is a snapshot of every cell; it is not
// modified.
func (c *Collector) Flush(currentTick int32, s fluid.Stats, densities []float64, emitters int) WindowStats {
	var meanDT float64
	if c.ticks > 0 {
		meanDT = c.dtSum / float64(c.ticks)
	}
	_, p10, p50, p90 := ComputeDistribution(densities)

	var drift float64
	if c.haveStartDensity {
		drift = s.TotalDensity - c.startDensity
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      c.simTime,
		Ticks:           c.ticks,
		MeanDT:          meanDT,

		TotalDensity: s.TotalDensity,
		MinDensity:   s.MinDensity,
		MaxDensity:   s.MaxDensity,
		MeanDensity:  s.MeanDensity,
		DensityP10:   p10,
		DensityP50:   p50,
		DensityP90:   p90,

		MaxSpeed:       s.MaxSpeed,
		DivergenceNorm: s.DivergenceNorm,

		BrushCells:   c.brushCells,
		EmitterCells: c.emitterCells,
		Emitters:     emitters,

		DensityDrift: drift,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowStartTime = c.simTime
	c.startDensity = s.TotalDensity
	c.haveStartDensity = true
	c.ticks = 0
	c.dtSum = 0
	c.brushCells = 0
	c.emitterCells = 0

	return stats
}

// Reset clears all state, e.g. after the fluid itself was reset.
func (c *Collector) Reset() {
	*c = Collector{windowDurationSec: c.windowDurationSec}
}

// WindowDurationSec returns the window length in simulation seconds.
func (c *Collector) WindowDurationSec() float64 {
	return c.windowDurationSec
}
