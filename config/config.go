// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Seed       int64            `yaml:"seed"` // RNG seed, 0 = time-based
	Domain     DomainConfig     `yaml:"domain"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Species    []SpeciesConfig  `yaml:"species"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// DomainConfig holds the fixed rectangular domain [0,X]x[0,Y].
type DomainConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// PopulationConfig holds initial seeding parameters.
// The founder population is placed uniformly in a disc.
type PopulationConfig struct {
	Initial int     `yaml:"initial"`
	Radius  float64 `yaml:"radius"`
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
}

// SpeciesConfig defines the full constant set for one species.
type SpeciesConfig struct {
	Name string `yaml:"name"`

	// Mechanics
	Mu            float64 `yaml:"mu"`             // Spring constant
	MuHet         float64 `yaml:"mu_het"`         // Heterotypic stiffness factor (stretched, cross-species)
	Drag          float64 `yaml:"drag"`           // Drag coefficient eta
	MatureLength  float64 `yaml:"mature_length"`  // Resting length s_mature after one time unit
	ExpansionRate float64 `yaml:"expansion_rate"` // Resting length epsilon at t=0
	Diffusivity   float64 `yaml:"diffusivity"`    // Thermal diffusivity xi
	Cutoff        float64 `yaml:"cutoff"`         // Interaction cutoff l_max

	// Proliferation
	ProlifRate   float64 `yaml:"prolif_rate"`    // Growth rate beta
	CarryingK    float64 `yaml:"carrying_k"`     // Carrying capacity density K
	DivideMinAge float64 `yaml:"divide_min_age"` // Division age window t_min
	DivideMaxAge float64 `yaml:"divide_max_age"` // Division age window t_max
	MinArea      float64 `yaml:"min_area"`       // Minimum region area A_min for division

	// Death
	MaxAge       float64 `yaml:"max_age"`       // d_max
	SickRate     float64 `yaml:"sick_rate"`     // p_sick per time unit
	MutationProb float64 `yaml:"mutation_prob"` // p_mut at birth
}

// TelemetryConfig holds census sampling parameters.
type TelemetryConfig struct {
	SampleEvery int `yaml:"sample_every"` // Steps between census records
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills species entries that omit fields.
func (c *Config) applyDefaults() {
	// Synthesize the reference three-species table if none specified
	if len(c.Species) == 0 {
		c.Species = []SpeciesConfig{
			{Name: "a"},
			{Name: "b"},
			{Name: "c"},
		}
	}

	for i := range c.Species {
		sp := &c.Species[i]
		if sp.Name == "" {
			sp.Name = fmt.Sprintf("species-%d", i)
		}
		if sp.Mu == 0 {
			sp.Mu = 50.0
		}
		if sp.MuHet == 0 {
			sp.MuHet = 2.0
		}
		if sp.Drag == 0 {
			sp.Drag = 1.0
		}
		if sp.MatureLength == 0 {
			sp.MatureLength = 1.0
		}
		if sp.ExpansionRate == 0 {
			sp.ExpansionRate = 0.05
		}
		if sp.Diffusivity == 0 {
			sp.Diffusivity = 1e-4
		}
		if sp.Cutoff == 0 {
			sp.Cutoff = 1.5
		}
		if sp.ProlifRate == 0 {
			sp.ProlifRate = 0.5
		}
		if sp.CarryingK == 0 {
			sp.CarryingK = 1.0
		}
		if sp.DivideMaxAge == 0 {
			sp.DivideMaxAge = 100.0
		}
		if sp.MinArea == 0 {
			sp.MinArea = 0.1
		}
		if sp.MaxAge == 0 {
			sp.MaxAge = 200.0
		}
	}

	if c.Telemetry.SampleEvery == 0 {
		c.Telemetry.SampleEvery = 10
	}
}

// Validate checks the configuration for values the engine cannot run with.
// Called by Load; a failure here is fatal at initialization, never mid-run.
func (c *Config) Validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("config: timestep must be positive, got %g", c.Physics.DT)
	}
	if c.Domain.X <= 0 || c.Domain.Y <= 0 {
		return fmt.Errorf("config: domain must be positive, got %gx%g", c.Domain.X, c.Domain.Y)
	}
	if c.Population.Initial < 3 {
		return fmt.Errorf("config: initial population must be at least 3, got %d", c.Population.Initial)
	}
	if c.Population.Radius <= 0 {
		return fmt.Errorf("config: seeding radius must be positive, got %g", c.Population.Radius)
	}
	if len(c.Species) == 0 {
		return fmt.Errorf("config: at least one species must be defined")
	}
	for _, sp := range c.Species {
		if sp.Mu < 0 || sp.MuHet < 0 || sp.ProlifRate < 0 || sp.SickRate < 0 || sp.Diffusivity < 0 {
			return fmt.Errorf("config: species %q has a negative rate constant", sp.Name)
		}
		if sp.Drag <= 0 {
			return fmt.Errorf("config: species %q drag must be positive, got %g", sp.Name, sp.Drag)
		}
		if sp.Cutoff <= 0 {
			return fmt.Errorf("config: species %q cutoff must be positive, got %g", sp.Name, sp.Cutoff)
		}
		if sp.DivideMinAge > sp.DivideMaxAge {
			return fmt.Errorf("config: species %q division age window is inverted (%g > %g)",
				sp.Name, sp.DivideMinAge, sp.DivideMaxAge)
		}
		if sp.MutationProb < 0 || sp.MutationProb > 1 {
			return fmt.Errorf("config: species %q mutation probability out of [0,1]: %g", sp.Name, sp.MutationProb)
		}
		if sp.MinArea < 0 {
			return fmt.Errorf("config: species %q min area must be non-negative, got %g", sp.Name, sp.MinArea)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
