// Package sim is the off-lattice cell population engine. Each step it
// sequences culling, proliferation, motion and a full re-tessellation
// over an append-only population store, consuming geometry through the
// port contract in package geom.
package sim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/geom"
	"github.com/pthm-cable/petri/population"
	"github.com/pthm-cable/petri/species"
)

// ErrConfig reports an invalid configuration at initialization.
var ErrConfig = errors.New("sim: invalid configuration")

// Phase is the orchestrator's position in the per-step cycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCulling
	PhaseProliferating
	PhaseMoving
	PhaseRetessellating
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCulling:
		return "culling"
	case PhaseProliferating:
		return "proliferating"
	case PhaseMoving:
		return "moving"
	case PhaseRetessellating:
		return "retessellating"
	}
	return "unknown"
}

// Options holds construction parameters not carried by the config file.
type Options struct {
	Seed int64
}

// Simulation owns one population and its per-step geometry snapshot.
// All state is held here; there is no package-level mutable state.
type Simulation struct {
	cfg   *config.Config
	table species.Table
	pairs [species.KindCount][species.KindCount]species.PairParams

	store *population.Store
	tess  geom.Tessellator
	snap  geom.Snapshot

	rng    *rng
	domain r2.Vec
	dt     float64

	now       float64
	stepCount int
	phase     Phase

	parallel *parallelState
}

// New validates the configuration, seeds the founder population in a
// disc and builds the initial geometry snapshot.
func New(cfg *config.Config, tess geom.Tessellator, opts Options) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfig)
	}
	if tess == nil {
		return nil, fmt.Errorf("%w: nil tessellator", ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	table := species.FromConfig(cfg.Species)
	s := &Simulation{
		cfg:      cfg,
		table:    table,
		pairs:    table.Pairs(),
		store:    population.NewStore(),
		tess:     tess,
		rng:      newRNG(opts.Seed),
		domain:   r2.Vec{X: cfg.Domain.X, Y: cfg.Domain.Y},
		dt:       cfg.Physics.DT,
		parallel: newParallelState(),
	}

	s.seed()

	snap, err := tess.Build(s.store.AlivePoints())
	if err != nil {
		return nil, fmt.Errorf("sim: building initial tessellation: %w", err)
	}
	s.snap = snap
	return s, nil
}

// seed places the founder population uniformly in the configured disc,
// cycling species round-robin.
func (s *Simulation) seed() {
	center := r2.Vec{X: s.cfg.Population.CenterX, Y: s.cfg.Population.CenterY}
	radius := s.cfg.Population.Radius
	for i := 0; i < s.cfg.Population.Initial; i++ {
		r := radius * math.Sqrt(s.rng.Float64())
		theta := 2 * math.Pi * s.rng.Float64()
		pos := r2.Add(center, r2.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
		pos = s.clampToDomain(pos)
		s.store.Add(species.Kind(i%int(species.KindCount)), pos, 0)
	}
}

// Step advances the simulation one timestep:
// culling -> proliferation -> motion -> re-tessellation.
// A geometry build failure is fatal for the step: the snapshot keeps
// its previous value and the phase stays at retessellating.
func (s *Simulation) Step() error {
	s.phase = PhaseCulling
	s.cull()

	s.phase = PhaseProliferating
	s.proliferate()

	s.phase = PhaseMoving
	s.move()

	s.now += s.dt
	s.stepCount++

	s.phase = PhaseRetessellating
	snap, err := s.tess.Build(s.store.AlivePoints())
	if err != nil {
		return fmt.Errorf("sim: step %d: rebuilding tessellation: %w", s.stepCount, err)
	}
	s.snap = snap

	s.phase = PhaseIdle
	return nil
}

// Run advances n steps, stopping at the first fatal step error.
func (s *Simulation) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the parallel worker pool.
func (s *Simulation) Close() {
	s.parallel.stopWorkers()
}

// Now returns the current simulated time.
func (s *Simulation) Now() float64 {
	return s.now
}

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int {
	return s.stepCount
}

// Phase returns the orchestrator's current phase.
func (s *Simulation) Phase() Phase {
	return s.phase
}

// Store exposes the population store for read-only inspection.
func (s *Simulation) Store() *population.Store {
	return s.store
}

// Snapshot exposes the current geometry snapshot.
func (s *Simulation) Snapshot() geom.Snapshot {
	return s.snap
}

// inDomain reports whether p lies inside [0,X]x[0,Y].
func (s *Simulation) inDomain(p r2.Vec) bool {
	return p.X >= 0 && p.X <= s.domain.X && p.Y >= 0 && p.Y <= s.domain.Y
}

func (s *Simulation) clampToDomain(p r2.Vec) r2.Vec {
	p.X = math.Min(math.Max(p.X, 0), s.domain.X)
	p.Y = math.Min(math.Max(p.Y, 0), s.domain.Y)
	return p
}
