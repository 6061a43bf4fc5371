// Package brain defines the value objects of the assembly-calculus model:
// the two BrainPart variants (Area, Stimulus) and the Connection holding
// the dense synapse matrix between a part and an area.
package brain

import (
	"errors"
	"fmt"
	"math"
)

// Handle is the stable integer identity a connectome assigns to a part at
// registration time. Connection and winner tables are keyed by handles, not
// by part values.
type Handle int

// NoHandle marks a part that has not been registered anywhere.
const NoHandle Handle = -1

var (
	// ErrInvalidSize is returned when a part is created with a non-positive
	// neuron count.
	ErrInvalidSize = errors.New("neuron count must be positive")

	// ErrInvalidQuota is returned when an area's winner quota k is negative
	// or exceeds its neuron count.
	ErrInvalidQuota = errors.New("winner quota must satisfy 0 < k <= n")

	// ErrInvalidBeta is returned when an area's plasticity rate is negative.
	// Potentiation multiplies weights by (1 + beta), so a negative rate
	// would shrink them.
	ErrInvalidBeta = errors.New("plasticity rate must be non-negative")
)

// Part is a brain part: either an *Area or a *Stimulus. The interface is
// closed; the engine dispatches on the concrete type for the active-neuron
// rule (areas expose winners, stimuli are always fully active).
type Part interface {
	fmt.Stringer

	// Name returns the human-readable label given at construction.
	Name() string

	// Neurons returns n, the number of neurons in the part.
	Neurons() int

	isPart()
}

// Area is a population of n neurons of which at most k fire per round.
type Area struct {
	name string
	n    int
	k    int
	beta float64
}

// NewArea creates an area with n neurons and a winner quota of k.
// Passing k == 0 selects the conventional default of floor(sqrt(n)).
func NewArea(name string, n, k int, beta float64) (*Area, error) {
	if n <= 0 {
		return nil, fmt.Errorf("area %q: n=%d: %w", name, n, ErrInvalidSize)
	}
	if k == 0 {
		k = int(math.Sqrt(float64(n)))
	}
	if k < 0 || k > n {
		return nil, fmt.Errorf("area %q: k=%d, n=%d: %w", name, k, n, ErrInvalidQuota)
	}
	if beta < 0 {
		return nil, fmt.Errorf("area %q: beta=%g: %w", name, beta, ErrInvalidBeta)
	}
	return &Area{name: name, n: n, k: k, beta: beta}, nil
}

func (a *Area) Name() string { return a.name }

func (a *Area) Neurons() int { return a.n }

// Quota returns k, the number of winners selected per round.
func (a *Area) Quota() int { return a.k }

// Beta returns the plasticity rate applied to connections sourced at this
// area (and, for stimulus sources, to connections targeting it).
func (a *Area) Beta() float64 { return a.beta }

func (a *Area) String() string {
	return fmt.Sprintf("Area(%s, n=%d, k=%d, beta=%g)", a.name, a.n, a.k, a.beta)
}

func (a *Area) isPart() {}

// Stimulus is an input source whose n units are all active every round.
// It has no winner quota and no plasticity rate of its own; connections
// sourced at a stimulus inherit the destination area's rate.
type Stimulus struct {
	name string
	n    int
}

// NewStimulus creates a stimulus with n always-active units.
func NewStimulus(name string, n int) (*Stimulus, error) {
	if n <= 0 {
		return nil, fmt.Errorf("stimulus %q: n=%d: %w", name, n, ErrInvalidSize)
	}
	return &Stimulus{name: name, n: n}, nil
}

func (s *Stimulus) Name() string { return s.name }

func (s *Stimulus) Neurons() int { return s.n }

func (s *Stimulus) String() string {
	return fmt.Sprintf("Stimulus(%s, n=%d)", s.name, s.n)
}

func (s *Stimulus) isPart() {}
