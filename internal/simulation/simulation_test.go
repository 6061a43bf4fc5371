package simulation

import (
	"context"
	"testing"

	"github.com/nvandessel/assembly-calculus/internal/recipe"
)

func testRecipe() *recipe.Recipe {
	r := recipe.Default()
	r.P = 0.05
	r.Seed = 11
	r.Areas = []recipe.AreaSpec{
		{Name: "A", Neurons: 500, Quota: 22, Beta: 0.1},
		{Name: "B", Neurons: 500, Quota: 22, Beta: 0.1},
	}
	r.Stimuli = []recipe.StimulusSpec{
		{Name: "stim", Neurons: 50},
	}
	return r
}

func repeatRounds(n int, round Round) []Round {
	rounds := make([]Round, n)
	for i := range rounds {
		rounds[i] = round
	}
	return rounds
}

func TestProjectionStabilizes(t *testing.T) {
	runner := NewRunner(t)

	result := runner.Run(Scenario{
		Name:   "projection",
		Recipe: testRecipe(),
		Rounds: repeatRounds(20, Round{
			"stim": {"A"},
			"A":    {"A"},
		}),
	})

	AssertWinnersBounded(t, result, "A", 22, 500)
	AssertWeightNondecreasing(t, result, "stim", "A")
	AssertWeightNondecreasing(t, result, "A", "A")
	AssertWeightIncreased(t, result, "stim", "A", 0, 19)

	// Late rounds converge: the winner set barely moves.
	AssertOverlapAtLeast(t, result, "A", 18, 19, 22*8/10)
}

func TestUntouchedAreaStaysEmpty(t *testing.T) {
	runner := NewRunner(t)

	result := runner.Run(Scenario{
		Name:   "only A fires",
		Recipe: testRecipe(),
		Rounds: repeatRounds(3, Round{"stim": {"A"}}),
	})

	for _, rr := range result.Rounds {
		if len(rr.Winners["B"]) != 0 {
			t.Errorf("round %d: B winners = %v, want empty", rr.Index, rr.Winners["B"])
		}
	}
	AssertWinnersBounded(t, result, "A", 22, 500)
}

func TestPlasticityToggleFreezesWeights(t *testing.T) {
	runner := NewRunner(t)

	result := runner.Run(Scenario{
		Name:   "freeze",
		Recipe: testRecipe(),
		Rounds: repeatRounds(10, Round{"stim": {"A"}}),
		BeforeRound: func(i int, b *recipe.Brain) {
			if i == 5 {
				b.Engine.SetPlasticity(false)
			}
		},
	})

	AssertWeightIncreased(t, result, "stim", "A", 0, 4)
	AssertWeightsFrozen(t, result, 5)
}

func TestDeterministicReplay(t *testing.T) {
	run := func() SimulationResult {
		runner := NewRunner(t)
		return runner.Run(Scenario{
			Name:   "replay",
			Recipe: testRecipe(),
			Rounds: repeatRounds(5, Round{
				"stim": {"A"},
				"A":    {"B"},
			}),
		})
	}

	first := run()
	second := run()

	for i := range first.Rounds {
		for _, area := range []string{"A", "B"} {
			AssertWinnersEqual(t, second, i, area, first.Rounds[i].Winners[area])
		}
	}
}

func TestWinnersPersisted(t *testing.T) {
	runner := NewRunner(t)

	result := runner.Run(Scenario{
		Name:   "persistence",
		Recipe: testRecipe(),
		Rounds: repeatRounds(3, Round{"stim": {"A"}}),
	})

	ctx := context.Background()
	run, err := result.Store.GetRun(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("run not persisted")
	}
	if run.Seed != 11 {
		t.Errorf("persisted seed = %d, want 11", run.Seed)
	}

	records, err := result.Store.GetWinners(ctx, result.RunID, "A")
	if err != nil {
		t.Fatalf("GetWinners: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("persisted records = %d, want 3", len(records))
	}
	for i, rec := range records {
		want := result.Rounds[i].Winners["A"]
		if len(rec.Winners) != len(want) {
			t.Errorf("round %d: persisted %d winners, want %d", i, len(rec.Winners), len(want))
			continue
		}
		for j := range want {
			if rec.Winners[j] != want[j] {
				t.Errorf("round %d: persisted winners %v, want %v", i, rec.Winners, want)
				break
			}
		}
	}
}
