package simulation

import (
	"testing"

	"github.com/nvandessel/assembly-calculus/internal/brain"
)

// AssertWinnersBounded asserts that an area's winner set in every round is
// either empty (never fired into) or exactly k indices inside [0, n).
func AssertWinnersBounded(t *testing.T, result SimulationResult, area string, k, n int) {
	t.Helper()
	for _, rr := range result.Rounds {
		winners, ok := rr.Winners[area]
		if !ok {
			t.Errorf("AssertWinnersBounded: round %d: area %s not in snapshot", rr.Index, area)
			continue
		}
		if len(winners) != 0 && len(winners) != k {
			t.Errorf("AssertWinnersBounded: round %d: area %s has %d winners (want 0 or %d)", rr.Index, area, len(winners), k)
		}
		for _, w := range winners {
			if w < 0 || w >= n {
				t.Errorf("AssertWinnersBounded: round %d: area %s winner %d out of [0, %d)", rr.Index, area, w, n)
			}
		}
	}
}

// AssertWinnersEqual asserts an area's exact winner set after a round.
func AssertWinnersEqual(t *testing.T, result SimulationResult, round int, area string, want []int) {
	t.Helper()
	got := result.Rounds[round].Winners[area]
	if len(got) != len(want) {
		t.Errorf("AssertWinnersEqual: round %d: area %s winners = %v, want %v", round, area, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssertWinnersEqual: round %d: area %s winners = %v, want %v", round, area, got, want)
			return
		}
	}
}

// AssertWeightNondecreasing asserts that a connection's weight sum never
// decreases across rounds.
func AssertWeightNondecreasing(t *testing.T, result SimulationResult, src, dst string) {
	t.Helper()
	key := EdgeKey(src, dst)
	prev := -1.0
	for _, rr := range result.Rounds {
		sum, ok := rr.WeightSums[key]
		if !ok {
			continue // connection not materialized yet
		}
		if prev >= 0 && sum < prev {
			t.Errorf("AssertWeightNondecreasing: round %d: edge %s weight sum %.6f < previous %.6f", rr.Index, key, sum, prev)
		}
		prev = sum
	}
}

// AssertWeightIncreased asserts that a connection's weight sum is strictly
// higher in a later round than in an earlier one.
func AssertWeightIncreased(t *testing.T, result SimulationResult, src, dst string, fromRound, toRound int) {
	t.Helper()
	key := EdgeKey(src, dst)
	wFrom, okFrom := result.Rounds[fromRound].WeightSums[key]
	wTo, okTo := result.Rounds[toRound].WeightSums[key]
	if !okFrom {
		t.Errorf("AssertWeightIncreased: edge %s not found in round %d", key, fromRound)
		return
	}
	if !okTo {
		t.Errorf("AssertWeightIncreased: edge %s not found in round %d", key, toRound)
		return
	}
	if wTo <= wFrom {
		t.Errorf("AssertWeightIncreased: edge %s weight sum did not increase: round %d=%.6f, round %d=%.6f", key, fromRound, wFrom, toRound, wTo)
	}
}

// AssertWeightsFrozen asserts that no connection's weight sum changes from
// a given round onward.
func AssertWeightsFrozen(t *testing.T, result SimulationResult, fromRound int) {
	t.Helper()
	if fromRound >= len(result.Rounds) {
		t.Fatalf("AssertWeightsFrozen: round %d out of range", fromRound)
	}
	base := result.Rounds[fromRound].WeightSums
	for i := fromRound + 1; i < len(result.Rounds); i++ {
		for key, sum := range result.Rounds[i].WeightSums {
			baseSum, ok := base[key]
			if !ok {
				continue // lazily created after fromRound; nothing to compare
			}
			if sum != baseSum {
				t.Errorf("AssertWeightsFrozen: round %d: edge %s weight sum %.6f != %.6f at round %d", i, key, sum, baseSum, fromRound)
			}
		}
	}
}

// AssertOverlapAtLeast asserts that an area's winner sets in two rounds
// share at least want indices. This is the convergence measure: a
// stabilizing assembly's late-round sets overlap heavily.
func AssertOverlapAtLeast(t *testing.T, result SimulationResult, area string, roundA, roundB, want int) {
	t.Helper()
	a := result.Rounds[roundA].Winners[area]
	b := result.Rounds[roundB].Winners[area]
	if got := brain.Overlap(a, b); got < want {
		t.Errorf("AssertOverlapAtLeast: area %s: overlap(round %d, round %d) = %d, want >= %d", area, roundA, roundB, got, want)
	}
}
