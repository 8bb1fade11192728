package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/geom"
	"github.com/pthm-cable/petri/sim"
	"github.com/pthm-cable/petri/species"
	"github.com/pthm-cable/petri/telemetry"
	"github.com/pthm-cable/petri/voronoi"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config or time-based)")
	steps := flag.Int("steps", 1000, "Number of timesteps to run")
	outputDir := flag.String("output-dir", "", "Output directory for CSV census and config snapshot")
	logEvery := flag.Int("log-every", 100, "Steps between census log lines (0 = silent)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Flag overrides config; 0 in both falls back to wall-clock time.
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, voronoi.New(), sim.Options{Seed: rngSeed})
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	collector := telemetry.NewCollector(cfg.Telemetry.SampleEvery)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"steps", *steps,
		"initial_population", cfg.Population.Initial,
		"domain_x", cfg.Domain.X,
		"domain_y", cfg.Domain.Y,
		"dt", cfg.Physics.DT,
	)

	for i := 0; i < *steps; i++ {
		if err := s.Step(); err != nil {
			// A degenerate geometry means the model drove the population
			// to extinction or collapse; report and stop.
			if errors.Is(err, geom.ErrDegenerate) {
				slog.Error("population degenerate, stopping",
					"step", s.StepCount(), "alive", s.AliveCount(), "error", err)
			} else {
				slog.Error("step failed", "step", s.StepCount(), "error", err)
			}
			writeOutput(om, collector)
			os.Exit(1)
		}

		collector.Observe(s)

		if *logEvery > 0 && s.StepCount()%*logEvery == 0 {
			c := s.Census()
			args := []any{
				"step", c.Step,
				"time", c.Time,
				"alive", c.Total,
				"dead", c.Dead,
			}
			for k := species.Kind(0); k < species.KindCount; k++ {
				args = append(args, s.SpeciesName(k), c.ByKind[k])
			}
			args = append(args, "mean_spring", s.MeanSpringLength())
			slog.Info("census", args...)
		}
	}

	writeOutput(om, collector)

	final := s.Census()
	slog.Info("simulation complete",
		"steps", final.Step, "alive", final.Total, "dead", final.Dead)
}

func writeOutput(om *telemetry.OutputManager, collector *telemetry.Collector) {
	if err := om.WriteCensus(collector.Records()); err != nil {
		slog.Error("failed to write census output", "error", err)
	}
}
