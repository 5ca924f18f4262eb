// Command protosoupctl is the headless tick-runner harness (§2.10): it
// loads config, builds an Engine at the configured capability tier,
// optionally loads a preset command-burst, runs a fixed tick count or
// free-runs back to back with no rate pacing, and logs/exports stats. Grounded on
// cmd/optimize/main.go's flag-parsing, config-loading, and
// report-at-the-end structure, reshaped from a CMA-ES parameter search
// into a straight single-run simulation driver.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/protosoup/config"
	"github.com/pthm-cable/protosoup/engine"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/presets"
	"github.com/pthm-cable/protosoup/stats"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use embedded defaults)")
	maxTicks := flag.Uint64("max-ticks", 1000, "Stop after this many ticks (0 = run forever, ticks back to back without rate pacing)")
	preset := flag.String("preset", "", "Preset to load at startup: petri_dish, gradient, arena (empty = use config default)")
	outputDir := flag.String("output-dir", "", "Directory to write a CSV stats export to (empty = no CSV sink)")
	logEvery := flag.Uint64("log-every", 100, "Log a stats snapshot every N ticks (0 = only at the end)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		if err := cfg.WriteYAML(*outputDir + "/config.yaml"); err != nil {
			logger.Warn("failed to snapshot config", "error", err)
		}
	}

	eng, err := engine.New(cfg.Derived.Limits, cfg.Derived.SimParams, cfg.Engine.TickRate, logger)
	if err != nil {
		logger.Error("engine failed to initialize", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	csvPath := cfg.Telemetry.CSVPath
	if *outputDir != "" && csvPath == "" {
		csvPath = *outputDir + "/stats.csv"
	}
	if csvPath != "" {
		w, err := stats.NewCSVWriter(csvPath)
		if err != nil {
			logger.Error("failed to open stats CSV sink", "error", err)
			os.Exit(1)
		}
		defer w.Close()
		eng.Reducer.WithCSV(w)
	}

	presetName := *preset
	if presetName == "" {
		presetName = cfg.Presets.Name
	}
	var burst []layout.Command
	switch presetName {
	case "petri_dish":
		burst = presets.PetriDish(eng.Fab.GridSize, cfg.Presets.SeedEnergy)
	case "gradient":
		burst = presets.Gradient(eng.Fab.GridSize)
	case "arena":
		burst = presets.Arena(eng.Fab.GridSize)
	case "":
		// No preset requested; start from an empty grid.
	default:
		logger.Warn("unknown preset name, starting from an empty grid", "name", presetName)
	}

	logger.Info("starting run",
		"tier", eng.Fab.Tier.String(),
		"grid_size", eng.Fab.GridSize,
		"preset", presetName,
		"max_ticks", *maxTicks,
	)

	for tick := uint64(0); *maxTicks == 0 || tick < *maxTicks; tick++ {
		var cmds []layout.Command
		if tick == 0 {
			cmds = burst
		}
		eng.Tick(cmds)

		if *logEvery != 0 && tick%*logEvery == 0 {
			if snap, ok := eng.TryTakeStats(); ok {
				logger.Info("stats", "snapshot", snap)
			}
		}
	}

	if snap, ok := eng.TryTakeStats(); ok {
		logger.Info("final stats", "snapshot", snap)
	}
}
