// Command tune searches pressure and diffusion iteration counts with
// CMA-ES, trading tick time against the divergence left in the flow.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/eddy/config"
)

// evalRow is one line of tune_log.csv.
type evalRow struct {
	Eval                int     `csv:"eval"`
	Cost                float64 `csv:"cost"`
	TickUS              int64   `csv:"tick_us"`
	Divergence          float64 `csv:"divergence"`
	PressureIterations  int     `csv:"pressure_iterations"`
	DiffusionIterations int     `csv:"diffusion_iterations"`
}

// formatDuration formats a duration as 1h02m03s or 2m03s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = defaults)")
	ticks := flag.Int("ticks", 600, "Ticks per run")
	dt := flag.Float64("dt", 1.0/60, "Timestep per tick in seconds")
	seeds := flag.Int("seeds", 2, "Runs per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	weight := flag.Float64("weight", 1.0, "Weight of divergence relative to tick time")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		fatal("-output is required")
	}
	if *ticks <= 0 || *dt <= 0 || *seeds <= 0 {
		fatal("-ticks, -dt and -seeds must be positive")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatal("creating output directory", "error", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("loading config", "error", err)
	}

	params := NewParamVector(baseCfg)
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds, int32(*ticks), *dt, *weight)

	ref, err := evaluator.Calibrate()
	if err != nil {
		fatal("calibrating", "error", err)
	}
	fmt.Printf("Baseline: tick=%s divergence=%.4g cost=%.3f\n", ref.TickTime, ref.Divergence, ref.Cost)

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		fatal("creating log file", "error", err)
	}
	defer logFile.Close()

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}

	evalCount := 0
	bestCost := math.Inf(1)
	bestParams := params.DefaultVector()
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			cost := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if cost < bestCost {
				bestCost = cost
				bestParams = clamped
			}

			ev := evaluator.Last()
			row := evalRow{
				Eval:                evalCount,
				Cost:                cost,
				TickUS:              ev.TickTime.Microseconds(),
				Divergence:          ev.Divergence,
				PressureIterations:  int(clamped[0]),
				DiffusionIterations: int(clamped[1]),
			}
			if err := writeRow(logFile, row, evalCount == 1); err != nil {
				slog.Warn("writing log row", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: p=%d d=%d cost=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, row.PressureIterations, row.DiffusionIterations, cost, bestCost,
				formatDuration(elapsed), formatDuration(remaining))
			return cost
		},
	}

	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.2, Population: popSize}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n", dim, popSize, *maxEvals)
	if _, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method); err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	fmt.Printf("\nDone after %d evaluations in %s, best cost %.3f\n", evalCount, formatDuration(time.Since(startTime)), bestCost)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.0f\n", spec.Name, bestParams[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)
	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(outPath); err != nil {
		fatal("writing best config", "error", err)
	}
	fmt.Printf("Best config saved to: %s\n", outPath)
}

// writeRow appends row to the log, with the header on the first call.
func writeRow(f *os.File, row evalRow, header bool) error {
	rows := []evalRow{row}
	if header {
		return gocsv.Marshal(rows, f)
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
