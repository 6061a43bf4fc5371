// Package simulation provides a scenario-based harness for multi-round
// firing experiments against a real baked brain and a real run store.
package simulation

import (
	"context"
	"fmt"
	"testing"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/recipe"
	"github.com/nvandessel/assembly-calculus/internal/store"
)

// Runner orchestrates simulation experiments with an isolated SQLite store.
type Runner struct {
	t     *testing.T
	store *store.SQLiteRunStore
}

// NewRunner creates a simulation runner backed by a store in a temp
// directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	s, err := store.NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Run bakes the scenario's recipe, executes its rounds, and returns the
// collected results. Winner sets are also persisted to the run store.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	rec := scenario.Recipe
	if rec == nil {
		rec = recipe.Default()
	}
	b, err := rec.Bake()
	if err != nil {
		r.t.Fatalf("Run(%s): bake: %v", scenario.Name, err)
	}

	runID, err := r.store.CreateRun(ctx, store.Run{Seed: rec.Seed, P: rec.P, Recipe: scenario.Name})
	if err != nil {
		r.t.Fatalf("Run(%s): create run: %v", scenario.Name, err)
	}

	rounds := make([]RoundResult, len(scenario.Rounds))
	for i, round := range scenario.Rounds {
		if scenario.BeforeRound != nil {
			scenario.BeforeRound(i, b)
		}

		request, err := resolveRound(b, round)
		if err != nil {
			r.t.Fatalf("Run(%s): round %d: %v", scenario.Name, i, err)
		}
		if err := b.Engine.Fire(request); err != nil {
			r.t.Fatalf("Run(%s): round %d: fire: %v", scenario.Name, i, err)
		}

		rounds[i] = r.snapshot(ctx, b, runID, i)
	}

	return SimulationResult{
		Rounds: rounds,
		Brain:  b,
		RunID:  runID,
		Store:  r.store,
	}
}

// resolveRound translates a name-keyed round into an engine firing request.
func resolveRound(b *recipe.Brain, round Round) (map[brain.Part][]*brain.Area, error) {
	request := make(map[brain.Part][]*brain.Area, len(round))
	for srcName, dstNames := range round {
		src, err := partByName(b, srcName)
		if err != nil {
			return nil, err
		}
		dests := make([]*brain.Area, 0, len(dstNames))
		for _, dstName := range dstNames {
			dst, ok := b.Areas[dstName]
			if !ok {
				return nil, fmt.Errorf("unknown destination area: %s", dstName)
			}
			dests = append(dests, dst)
		}
		request[src] = dests
	}
	return request, nil
}

func partByName(b *recipe.Brain, name string) (brain.Part, error) {
	if area, ok := b.Areas[name]; ok {
		return area, nil
	}
	if stim, ok := b.Stimuli[name]; ok {
		return stim, nil
	}
	return nil, fmt.Errorf("unknown part: %s", name)
}

// snapshot captures every area's winners and every materialized
// connection's weight sum, and persists the winners.
func (r *Runner) snapshot(ctx context.Context, b *recipe.Brain, runID string, index int) RoundResult {
	r.t.Helper()

	result := RoundResult{
		Index:      index,
		Winners:    make(map[string][]int, len(b.Areas)),
		WeightSums: make(map[string]float64),
	}

	for name, area := range b.Areas {
		winners, err := b.Engine.Winners(area)
		if err != nil {
			r.t.Fatalf("snapshot: winners of %s: %v", name, err)
		}
		result.Winners[name] = winners

		if err := r.store.RecordWinners(ctx, runID, store.WinnerRecord{
			Round:   index,
			Area:    name,
			Winners: winners,
		}); err != nil {
			r.t.Fatalf("snapshot: record winners of %s: %v", name, err)
		}
	}

	for srcName, src := range allParts(b) {
		for dstName, dst := range b.Areas {
			conn, err := b.Engine.Connection(src, dst)
			if err != nil {
				r.t.Fatalf("snapshot: connection %s->%s: %v", srcName, dstName, err)
			}
			if conn == nil {
				continue
			}
			result.WeightSums[EdgeKey(srcName, dstName)] = weightSum(conn)
		}
	}

	return result
}

// allParts merges areas and stimuli into one name-keyed map.
func allParts(b *recipe.Brain) map[string]brain.Part {
	parts := make(map[string]brain.Part, len(b.Areas)+len(b.Stimuli))
	for name, area := range b.Areas {
		parts[name] = area
	}
	for name, stim := range b.Stimuli {
		parts[name] = stim
	}
	return parts
}

func weightSum(conn *brain.Connection) float64 {
	total := 0.0
	for _, row := range conn.Synapses {
		for _, w := range row {
			total += w
		}
	}
	return total
}

// FormatRoundDebug returns a debug string for a round result.
func FormatRoundDebug(rr RoundResult) string {
	s := fmt.Sprintf("Round %d:\n", rr.Index)
	for area, winners := range rr.Winners {
		s += fmt.Sprintf("  %s: winners=%v\n", area, winners)
	}
	for key, sum := range rr.WeightSums {
		s += fmt.Sprintf("  edge %s: weight sum=%.6f\n", key, sum)
	}
	return s
}
