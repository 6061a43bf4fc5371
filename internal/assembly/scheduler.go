package assembly

import (
	"fmt"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/connectome"
)

// layer maps each entity scheduled for one round to the areas it must fire
// into during that round.
type layer map[Projectable][]*brain.Area

// FireAll executes the ordered sequence of firing rounds needed for the
// target area to reflect the cumulative causal history of the given
// entities.
//
// It unrolls the parent DAG into layers: the requested entities form the
// last layer, each assembly contributes its parents (firing into the
// assembly's own area) to the layer before it, and the unrolling stops at
// a layer of raw stimuli. The layers then execute root-first, one engine
// round each, so every entity fires only after its entire ancestry has
// been re-stabilized.
//
// The parent relation must be a finite DAG; FireAll does not detect cycles
// and will not terminate on one.
func FireAll(eng *connectome.Engine, entities []Projectable, target *brain.Area) error {
	first := make(layer, len(entities))
	for _, ent := range entities {
		first[ent] = append(first[ent], target)
	}

	layers, err := unroll(first)
	if err != nil {
		return err
	}

	for i := len(layers) - 1; i >= 0; i-- {
		if err := eng.Fire(toRequest(layers[i])); err != nil {
			return fmt.Errorf("fire layer %d: %w", len(layers)-1-i, err)
		}
	}
	return nil
}

// unroll builds the layer list from the requested layer up toward the
// stimulus roots. layers[0] is the requested layer; the last layer contains
// only stimuli. When a parent is reachable through several assemblies of
// one layer, its destination lists are combined, so it fires into every
// area that needs it in a single round.
func unroll(first layer) ([]layer, error) {
	layers := []layer{first}
	for {
		current := layers[len(layers)-1]
		next := make(layer)
		for ent := range current {
			switch ent := ent.(type) {
			case *brain.Stimulus:
				// Roots: nothing to expand.
			case *Assembly:
				for _, parent := range ent.Parents() {
					next[parent] = append(next[parent], ent.Area())
				}
			default:
				return nil, fmt.Errorf("fire %s: not a stimulus or assembly", ent.Name())
			}
		}
		if len(next) == 0 {
			return layers, nil
		}
		layers = append(layers, next)
	}
}

// toRequest lowers a layer into the engine's vocabulary: stimuli fire as
// themselves, assemblies fire as their hosting areas. Assemblies sharing an
// area have their destination lists concatenated.
func toRequest(l layer) map[brain.Part][]*brain.Area {
	request := make(map[brain.Part][]*brain.Area, len(l))
	for ent, areas := range l {
		switch ent := ent.(type) {
		case *brain.Stimulus:
			request[ent] = append(request[ent], areas...)
		case *Assembly:
			request[ent.Area()] = append(request[ent.Area()], areas...)
		}
	}
	return request
}
