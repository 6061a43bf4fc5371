// Package randmat generates the random dense synapse matrices used by the
// connectome. Entries are independent Bernoulli(p) draws. Generation is
// batched: rows are produced in fixed-size blocks fanned out across workers,
// with each block's PCG stream derived from (seed, matrix index, block
// index), so output is reproducible for a given seed regardless of how many
// workers run.
package randmat

import (
	"math/rand/v2"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// blockRows is the number of rows a single worker fills per block.
const blockRows = 256

// Generator produces Bernoulli matrices from a fixed seed. Each call to
// Bernoulli consumes the next matrix index, so the sequence of generated
// matrices is deterministic in call order. Safe for concurrent use.
type Generator struct {
	seed    uint64
	workers int
	matrix  atomic.Uint64
}

// New creates a generator seeded with seed, using up to workers goroutines
// per matrix. workers <= 0 selects GOMAXPROCS.
func New(seed uint64, workers int) *Generator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{seed: seed, workers: workers}
}

// Bernoulli returns a rows x cols matrix whose entries are independently 1
// with probability p and 0 otherwise.
func (g *Generator) Bernoulli(rows, cols int, p float64) [][]float64 {
	out := make([][]float64, rows)
	backing := make([]float64, rows*cols)
	for i := range out {
		out[i] = backing[i*cols : (i+1)*cols]
	}

	matrix := g.matrix.Add(1)

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for first := 0; first < rows; first += blockRows {
		first := first
		last := min(first+blockRows, rows)
		block := uint64(first / blockRows)
		eg.Go(func() error {
			rng := rand.New(rand.NewPCG(g.seed, matrix<<20|block))
			for i := first; i < last; i++ {
				row := out[i]
				for j := range row {
					if rng.Float64() < p {
						row[j] = 1
					}
				}
			}
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = eg.Wait()

	return out
}
