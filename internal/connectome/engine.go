// Package connectome implements the firing engine over a population of
// brain parts: lazy random synapse generation, per-round winner selection
// under each area's fixed quota, and Hebbian potentiation of the synapses
// that produced the winners.
package connectome

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/logging"
	"github.com/nvandessel/assembly-calculus/internal/randmat"
)

var (
	// ErrNotRegistered is returned when a firing request references a part
	// the engine has never seen.
	ErrNotRegistered = errors.New("part not registered")

	// ErrAlreadyRegistered is returned on duplicate registration.
	ErrAlreadyRegistered = errors.New("part already registered")
)

// Config holds the tunable parameters of a connectome engine.
type Config struct {
	// P is the probability that any given synapse exists in a freshly
	// generated connection matrix. Default: 0.1.
	P float64

	// Seed drives all random matrix generation. Two engines with the same
	// seed and the same firing sequence produce identical state.
	Seed uint64

	// Workers bounds the per-round fan-out: winner computation runs in
	// parallel across destination areas. <= 0 selects GOMAXPROCS.
	Workers int

	// Plasticity is the initial state of the plasticity toggle.
	Plasticity bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		P:          0.1,
		Seed:       1,
		Workers:    runtime.GOMAXPROCS(0),
		Plasticity: true,
	}
}

// pairKey identifies a connection by the handles of its endpoints.
type pairKey struct {
	src, dst brain.Handle
}

// Engine owns every connection and every area's winner set. All mutation
// happens through Register and Fire; callers read results back through
// Winners and Connection.
type Engine struct {
	config Config
	gen    *randmat.Generator
	rounds *logging.RoundLogger

	handles     map[brain.Part]brain.Handle
	parts       []brain.Part
	connections map[pairKey]*brain.Connection
	winners     map[brain.Handle][]int
	plasticity  bool
	round       int
}

// New creates an empty engine. Parts must be registered before they can
// appear in a firing request.
func New(config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		config:      config,
		gen:         randmat.New(config.Seed, config.Workers),
		handles:     make(map[brain.Part]brain.Handle),
		parts:       nil,
		connections: make(map[pairKey]*brain.Connection),
		winners:     make(map[brain.Handle][]int),
		plasticity:  config.Plasticity,
	}
}

// SetRoundLogger attaches a JSONL round tracer. Passing nil disables
// tracing; a nil RoundLogger is also safe.
func (e *Engine) SetRoundLogger(rl *logging.RoundLogger) {
	e.rounds = rl
}

// SetPlasticity toggles Hebbian updates for all future Fire calls.
func (e *Engine) SetPlasticity(enabled bool) {
	e.plasticity = enabled
}

// PlasticityEnabled reports the current state of the plasticity toggle.
func (e *Engine) PlasticityEnabled() bool {
	return e.plasticity
}

// Register adds a part and eagerly wires it against every part registered
// before it: a connection into every existing area, and, if the new part is
// itself an area, a connection from every existing part into it.
// Duplicate registration is rejected.
func (e *Engine) Register(part brain.Part) error {
	if _, ok := e.handles[part]; ok {
		return fmt.Errorf("register %s: %w", part, ErrAlreadyRegistered)
	}

	h := brain.Handle(len(e.parts))
	e.handles[part] = h
	e.parts = append(e.parts, part)

	for _, other := range e.parts {
		if other == part {
			continue
		}
		if area, ok := other.(*brain.Area); ok {
			e.ensureConnection(part, area)
		}
		if area, ok := part.(*brain.Area); ok {
			e.ensureConnection(other, area)
		}
	}
	return nil
}

// Winners returns a copy of the area's current winner set. The set is empty
// until the area first receives input. Winner indices are sorted ascending.
func (e *Engine) Winners(area *brain.Area) ([]int, error) {
	h, ok := e.handles[area]
	if !ok {
		return nil, fmt.Errorf("winners of %s: %w", area, ErrNotRegistered)
	}
	return slices.Clone(e.winners[h]), nil
}

// Connection returns the connection from source to dest, or nil if it has
// not been created yet. An error is returned only for unregistered parts.
func (e *Engine) Connection(source brain.Part, dest *brain.Area) (*brain.Connection, error) {
	src, ok := e.handles[source]
	if !ok {
		return nil, fmt.Errorf("connection from %s: %w", source, ErrNotRegistered)
	}
	dst, ok := e.handles[dest]
	if !ok {
		return nil, fmt.Errorf("connection into %s: %w", dest, ErrNotRegistered)
	}
	return e.connections[pairKey{src, dst}], nil
}

// Fire runs one simulation round. The request maps each firing source to
// the ordered list of areas it projects into this round. For every touched
// area the engine computes new winners from the previous round's state,
// then applies plasticity using the previous winners as the active-source
// reference, and only then commits the new winner sets.
func (e *Engine) Fire(request map[brain.Part][]*brain.Area) error {
	sources, dests, err := e.groupByDestination(request)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		return nil
	}

	// Lazy wiring happens before projection so the parallel phase below is
	// read-only with respect to engine state.
	for _, dst := range dests {
		area := e.parts[dst].(*brain.Area)
		for _, src := range sources[dst] {
			e.ensureConnection(e.parts[src], area)
		}
	}

	newWinners := make(map[brain.Handle][]int, len(dests))
	results := make([][]int, len(dests))

	var eg errgroup.Group
	eg.SetLimit(e.config.Workers)
	for i, dst := range dests {
		i, dst := i, dst
		eg.Go(func() error {
			results[i] = e.projectInto(dst, sources[dst])
			return nil
		})
	}
	// Projection is a pure function of previous-round state; the join is
	// the only synchronization needed.
	_ = eg.Wait()
	for i, dst := range dests {
		newWinners[dst] = results[i]
	}

	if e.plasticity {
		e.applyPlasticity(newWinners, sources, dests)
	}

	for dst, winners := range newWinners {
		e.winners[dst] = winners
	}

	e.round++
	e.logRound(dests, sources, newWinners)
	return nil
}

// groupByDestination inverts the firing request into per-destination source
// sets. Sources and destinations are ordered by handle so that matrix
// generation and input accumulation are deterministic. Every part in the
// request must be registered; validation completes before any state change.
func (e *Engine) groupByDestination(request map[brain.Part][]*brain.Area) (map[brain.Handle][]brain.Handle, []brain.Handle, error) {
	sources := make(map[brain.Handle][]brain.Handle)
	for part, areas := range request {
		src, ok := e.handles[part]
		if !ok {
			return nil, nil, fmt.Errorf("fire from %s: %w", part, ErrNotRegistered)
		}
		for _, area := range areas {
			dst, ok := e.handles[area]
			if !ok {
				return nil, nil, fmt.Errorf("fire into %s: %w", area, ErrNotRegistered)
			}
			sources[dst] = append(sources[dst], src)
		}
	}

	dests := make([]brain.Handle, 0, len(sources))
	for dst, srcs := range sources {
		// Each area's sources form a set: a source listing the same
		// destination twice must not double its input.
		sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })
		sources[dst] = slices.Compact(srcs)
		dests = append(dests, dst)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
	return sources, dests, nil
}

// ensureConnection creates the (source, dest) connection if absent, backed
// by a freshly generated Bernoulli(p) matrix.
func (e *Engine) ensureConnection(source brain.Part, dest *brain.Area) *brain.Connection {
	key := pairKey{e.handles[source], e.handles[dest]}
	if conn, ok := e.connections[key]; ok {
		return conn
	}
	synapses := e.gen.Bernoulli(source.Neurons(), dest.Neurons(), e.config.P)
	conn := brain.NewConnection(source, dest, synapses)
	e.connections[key] = conn
	return conn
}

// projectInto computes the new winner set of one area from the previous
// round's winners and weights. It reads shared engine state but never
// writes it, which is what makes the per-area fan-out in Fire safe.
func (e *Engine) projectInto(dst brain.Handle, srcs []brain.Handle) []int {
	area := e.parts[dst].(*brain.Area)
	input := make([]float64, area.Neurons())

	for _, src := range srcs {
		conn := e.connections[pairKey{src, dst}]
		for _, i := range e.activeNeurons(src) {
			row := conn.Synapses[i]
			for j, w := range row {
				input[j] += w
			}
		}
	}

	return topK(input, area.Quota())
}

// activeNeurons returns the source neurons considered active this round:
// every unit of a stimulus, or an area's winners from the previous round.
func (e *Engine) activeNeurons(src brain.Handle) []int {
	switch part := e.parts[src].(type) {
	case *brain.Stimulus:
		all := make([]int, part.Neurons())
		for i := range all {
			all[i] = i
		}
		return all
	case *brain.Area:
		return e.winners[src]
	}
	return nil
}

// applyPlasticity potentiates, for every touched area, the synapses from
// this round's active source neurons to the area's new winners. It must run
// before the winner commit: the active set of an area source is its
// previous winner set, the same one projection read.
func (e *Engine) applyPlasticity(newWinners map[brain.Handle][]int, sources map[brain.Handle][]brain.Handle, dests []brain.Handle) {
	for _, dst := range dests {
		winners := newWinners[dst]
		for _, src := range sources[dst] {
			conn := e.connections[pairKey{src, dst}]
			conn.Potentiate(e.activeNeurons(src), winners)
		}
	}
}

// logRound emits one JSONL trace line describing the finished round.
func (e *Engine) logRound(dests []brain.Handle, sources map[brain.Handle][]brain.Handle, newWinners map[brain.Handle][]int) {
	if e.rounds == nil {
		return
	}
	areas := make([]logging.AreaTrace, 0, len(dests))
	for _, dst := range dests {
		srcNames := make([]string, 0, len(sources[dst]))
		for _, src := range sources[dst] {
			srcNames = append(srcNames, e.parts[src].Name())
		}
		areas = append(areas, logging.AreaTrace{
			Area:    e.parts[dst].Name(),
			Sources: srcNames,
			Winners: len(newWinners[dst]),
		})
	}
	e.rounds.Log(logging.RoundEvent{
		Round:      e.round,
		Plasticity: e.plasticity,
		Areas:      areas,
	})
}
