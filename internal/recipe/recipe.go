// Package recipe provides brain-recipe configuration for acal.
// A recipe describes the areas, stimuli, and engine parameters of a brain;
// baking a recipe yields a connectome engine with everything registered.
// Recipes load from YAML files with environment variable overrides.
package recipe

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/connectome"
)

// DefaultBeta is the plasticity rate used for areas that do not set one.
const DefaultBeta = 0.01

// Recipe contains the full description of a brain to simulate.
type Recipe struct {
	// P is the synapse existence probability for generated connections.
	P float64 `json:"p" yaml:"p"`

	// Seed drives all random matrix generation. Runs with equal seeds and
	// equal firing sequences are identical.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds the engine's per-round parallelism. 0 = GOMAXPROCS.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Plasticity is the initial state of the engine's plasticity toggle.
	Plasticity bool `json:"plasticity" yaml:"plasticity"`

	// Logging configures operational and round logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	Areas   []AreaSpec     `json:"areas" yaml:"areas"`
	Stimuli []StimulusSpec `json:"stimuli" yaml:"stimuli"`
}

// LoggingConfig configures acal's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables round logging to rounds.jsonl.
	Level string `json:"level" yaml:"level"`
}

// AreaSpec describes one area of the brain.
type AreaSpec struct {
	Name string `json:"name" yaml:"name"`

	// Neurons is n, the population size.
	Neurons int `json:"neurons" yaml:"neurons"`

	// Quota is k, the winners selected per round. 0 = floor(sqrt(n)).
	Quota int `json:"quota,omitempty" yaml:"quota,omitempty"`

	// Beta is the plasticity rate of connections sourced at this area.
	// 0 = DefaultBeta.
	Beta float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
}

// StimulusSpec describes one stimulus feeding the brain.
type StimulusSpec struct {
	Name string `json:"name" yaml:"name"`

	// Neurons is n, the number of always-active units.
	Neurons int `json:"neurons" yaml:"neurons"`
}

// Default returns a Recipe with sensible defaults and no parts.
func Default() *Recipe {
	return &Recipe{
		P:          0.1,
		Seed:       1,
		Plasticity: true,
		Logging:    LoggingConfig{Level: "info"},
	}
}

// LoadFromFile loads a recipe from a YAML file, applying defaults and
// environment variable overrides.
func LoadFromFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}

	r := Default()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	applyEnvOverrides(r)
	return r, nil
}

// Validate checks that the recipe is well-formed. Per-part constraints
// (positive sizes, quota bounds) are enforced again when baking.
func (r *Recipe) Validate() error {
	if r.P < 0 || r.P > 1 {
		return fmt.Errorf("p must be between 0 and 1, got %f", r.P)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if r.Logging.Level != "" && !validLevels[r.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", r.Logging.Level)
	}

	seen := make(map[string]bool, len(r.Areas)+len(r.Stimuli))
	for _, a := range r.Areas {
		if a.Name == "" {
			return fmt.Errorf("area without a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate part name: %s", a.Name)
		}
		seen[a.Name] = true
	}
	for _, s := range r.Stimuli {
		if s.Name == "" {
			return fmt.Errorf("stimulus without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate part name: %s", s.Name)
		}
		seen[s.Name] = true
	}

	return nil
}

// Brain is a baked recipe: a fully registered engine plus name lookups for
// the parts it was built from.
type Brain struct {
	Engine  *connectome.Engine
	Areas   map[string]*brain.Area
	Stimuli map[string]*brain.Stimulus
}

// Bake validates the recipe and constructs a connectome engine with every
// area and stimulus registered.
func (r *Recipe) Bake() (*Brain, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	eng := connectome.New(connectome.Config{
		P:          r.P,
		Seed:       r.Seed,
		Workers:    r.Workers,
		Plasticity: r.Plasticity,
	})

	b := &Brain{
		Engine:  eng,
		Areas:   make(map[string]*brain.Area, len(r.Areas)),
		Stimuli: make(map[string]*brain.Stimulus, len(r.Stimuli)),
	}

	for _, spec := range r.Areas {
		beta := spec.Beta
		if beta == 0 {
			beta = DefaultBeta
		}
		area, err := brain.NewArea(spec.Name, spec.Neurons, spec.Quota, beta)
		if err != nil {
			return nil, fmt.Errorf("baking recipe: %w", err)
		}
		if err := eng.Register(area); err != nil {
			return nil, fmt.Errorf("baking recipe: %w", err)
		}
		b.Areas[spec.Name] = area
	}

	for _, spec := range r.Stimuli {
		stim, err := brain.NewStimulus(spec.Name, spec.Neurons)
		if err != nil {
			return nil, fmt.Errorf("baking recipe: %w", err)
		}
		if err := eng.Register(stim); err != nil {
			return nil, fmt.Errorf("baking recipe: %w", err)
		}
		b.Stimuli[spec.Name] = stim
	}

	return b, nil
}

// applyEnvOverrides applies environment variable overrides to the recipe.
func applyEnvOverrides(r *Recipe) {
	if v := os.Getenv("ACAL_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			r.Seed = n
		}
	}

	if v := os.Getenv("ACAL_P"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			r.P = f
		}
	}

	if v := os.Getenv("ACAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.Workers = n
		}
	}

	if v := os.Getenv("ACAL_PLASTICITY"); v != "" {
		r.Plasticity = v == "true" || v == "1"
	}

	if v := os.Getenv("ACAL_LOG_LEVEL"); v != "" {
		r.Logging.Level = v
	}
}
