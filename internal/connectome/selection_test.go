package connectome

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func TestTopK(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		k     int
		want  []int
	}{
		{
			name:  "distinct values",
			input: []float64{3, 1, 4, 1.5, 9, 2.6},
			k:     3,
			want:  []int{0, 2, 4},
		},
		{
			name:  "ties break toward lower index",
			input: []float64{5, 5, 5, 5},
			k:     2,
			want:  []int{0, 1},
		},
		{
			name:  "tie at the boundary",
			input: []float64{1, 2, 2, 2, 0},
			k:     2,
			want:  []int{1, 2},
		},
		{
			name:  "all zeros selects first k",
			input: []float64{0, 0, 0, 0, 0},
			k:     3,
			want:  []int{0, 1, 2},
		},
		{
			name:  "k equals length",
			input: []float64{2, 1, 3},
			k:     3,
			want:  []int{0, 1, 2},
		},
		{
			name:  "k above length",
			input: []float64{2, 1},
			k:     10,
			want:  []int{0, 1},
		},
		{
			name:  "k zero",
			input: []float64{1, 2, 3},
			k:     0,
			want:  []int{},
		},
		{
			name:  "single winner",
			input: []float64{1, 7, 3},
			k:     1,
			want:  []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topK(tt.input, tt.k)
			if !equalInts(got, tt.want) {
				t.Errorf("topK(%v, %d) = %v, want %v", tt.input, tt.k, got, tt.want)
			}
		})
	}
}

func TestTopKMatchesSort(t *testing.T) {
	// The heap selection must agree with a full stable sort on random input.
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(200)
		k := rng.IntN(n + 1)
		input := make([]float64, n)
		for i := range input {
			// Coarse values force frequent ties.
			input[i] = float64(rng.IntN(10))
		}

		want := topKBySort(input, k)
		got := topK(input, k)
		if !equalInts(got, want) {
			t.Fatalf("trial %d: topK(n=%d, k=%d) = %v, want %v\ninput: %v", trial, n, k, got, want, input)
		}
	}
}

// topKBySort is the reference implementation: order all indices by
// (input desc, index asc) and take the first k.
func topKBySort(input []float64, k int) []int {
	idx := make([]int, len(input))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if input[idx[a]] != input[idx[b]] {
			return input[idx[a]] > input[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if k > len(idx) {
		k = len(idx)
	}
	if k < 0 {
		k = 0
	}
	top := append([]int(nil), idx[:k]...)
	sort.Ints(top)
	return top
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
