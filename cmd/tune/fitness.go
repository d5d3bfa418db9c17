package main

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pthm-cable/eddy/config"
	"github.com/pthm-cable/eddy/game"
	"github.com/pthm-cable/eddy/systems"
	"github.com/pthm-cable/eddy/telemetry"
)

// Stroke angular speed in radians per sim second.
const strokeSpeed = 2.0

// runResult is what one headless run reports.
type runResult struct {
	tickTime   time.Duration
	divergence float64 // Mean divergence norm over the measured windows
}

// Evaluation is the averaged outcome of one parameter vector.
type Evaluation struct {
	Cost       float64
	TickTime   time.Duration
	Divergence float64
}

// FitnessEvaluator runs scripted headless simulations and scores how much
// a parameter vector costs per tick against how divergent it leaves the flow.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	seeds       []int64
	ticks       int32
	dt          float64
	statsWindow float64
	weight      float64 // Divergence weight relative to tick time

	// Reference values from the base config; zero until Calibrate.
	refTick time.Duration
	refDiv  float64

	mu   sync.Mutex
	last Evaluation
}

// NewFitnessEvaluator creates an evaluator that runs each seed for ticks
// steps of dt.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, ticks int32, dt, weight float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  baseCfg,
		seeds:       seeds,
		ticks:       ticks,
		dt:          dt,
		statsWindow: 1.0,
		weight:      weight,
	}
}

// Calibrate measures the base config so later costs are relative to it.
func (fe *FitnessEvaluator) Calibrate() (Evaluation, error) {
	tick, div, err := fe.measure(fe.params.DefaultVector())
	if err != nil {
		return Evaluation{}, err
	}
	fe.refTick = tick
	fe.refDiv = div
	ev := Evaluation{Cost: fe.cost(tick, div), TickTime: tick, Divergence: div}
	fe.setLast(ev)
	return ev, nil
}

// Evaluate scores raw parameter values (lower is better). Runs that fail
// to build a game score +Inf.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	tick, div, err := fe.measure(raw)
	if err != nil {
		fe.setLast(Evaluation{Cost: math.Inf(1)})
		return math.Inf(1)
	}
	ev := Evaluation{Cost: fe.cost(tick, div), TickTime: tick, Divergence: div}
	fe.setLast(ev)
	return ev.Cost
}

// Last returns the most recent evaluation.
func (fe *FitnessEvaluator) Last() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

func (fe *FitnessEvaluator) setLast(ev Evaluation) {
	fe.mu.Lock()
	fe.last = ev
	fe.mu.Unlock()
}

// cost = tick/refTick + weight * div/refDiv. Before calibration both
// reference values are zero and the raw sum is returned.
func (fe *FitnessEvaluator) cost(tick time.Duration, div float64) float64 {
	t := float64(tick)
	if fe.refTick > 0 {
		t /= float64(fe.refTick)
	}
	d := div
	if fe.refDiv > 0 {
		d /= fe.refDiv
	}
	return t + fe.weight*d
}

// measure averages tick time and divergence over all seeds. Seeds run
// one after another so the timings do not compete for cores.
func (fe *FitnessEvaluator) measure(raw []float64) (time.Duration, float64, error) {
	var tick time.Duration
	var div float64
	for _, seed := range fe.seeds {
		r, err := fe.runSimulation(raw, seed)
		if err != nil {
			return 0, 0, err
		}
		tick += r.tickTime
		div += r.divergence
	}
	n := len(fe.seeds)
	return tick / time.Duration(n), div / float64(n), nil
}

// runSimulation drives one headless game with a scripted circular stroke
// that draws density and pushes velocity on every tick.
func (fe *FitnessEvaluator) runSimulation(raw []float64, seed int64) (*runResult, error) {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, raw)
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var windows []telemetry.WindowStats
	g, err := game.NewGame(&cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	cx := float64(cfg.Screen.Width) / 2
	cy := float64(cfg.Screen.Height) / 2
	r := 0.3 * math.Min(cx, cy)
	phase := float64(seed%360) * math.Pi / 180

	for i := int32(0); i < fe.ticks; i++ {
		a := phase + strokeSpeed*float64(i)*fe.dt
		g.SetPointer(systems.Pointer{
			X:     float32(cx + r*math.Cos(a)),
			Y:     float32(cy + r*math.Sin(a)),
			Left:  true,
			Right: true,
		})
		g.UpdateHeadless(fe.dt)
	}

	res := &runResult{tickTime: g.PerfStats().AvgTickDuration}
	if len(windows) > 0 {
		for _, w := range windows {
			res.divergence += w.DivergenceNorm
		}
		res.divergence /= float64(len(windows))
	}
	return res, nil
}
