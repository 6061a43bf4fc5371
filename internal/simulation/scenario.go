package simulation

import (
	"github.com/nvandessel/assembly-calculus/internal/recipe"
	"github.com/nvandessel/assembly-calculus/internal/store"
)

// Scenario defines a complete simulation experiment: the brain to bake and
// the firing rounds to run against it.
type Scenario struct {
	Name   string
	Recipe *recipe.Recipe

	// Rounds are executed in order, one engine fire per entry. Each round
	// maps source part names to destination area names.
	Rounds []Round

	// BeforeRound, when non-nil, is called before each round executes.
	// Use this to manipulate the engine between rounds (e.g. toggling
	// plasticity mid-run).
	BeforeRound func(roundIndex int, b *recipe.Brain)
}

// Round is one firing request expressed by part name.
type Round map[string][]string

// RoundResult captures the observable state after one firing round.
type RoundResult struct {
	Index int

	// Winners holds each registered area's winner set after the round.
	Winners map[string][]int

	// WeightSums holds, for every materialized connection, the sum of its
	// synapse weights, keyed by EdgeKey. Weight sums are a cheap proxy for
	// plasticity: potentiation strictly increases them.
	WeightSums map[string]float64
}

// SimulationResult captures all rounds, the baked brain, and the persisted
// run.
type SimulationResult struct {
	Rounds []RoundResult
	Brain  *recipe.Brain
	RunID  string
	Store  store.RunStore
}

// EdgeKey builds the canonical map key for a connection.
func EdgeKey(src, dst string) string {
	return src + "->" + dst
}
