// Package assembly implements the derived-entity layer over the connectome
// engine: assemblies identified by their hosting area and parent entities,
// the firing scheduler that reconstructs an assembly from raw stimuli, and
// the convenience operations (project, merge, associate) that create new
// assemblies by firing.
package assembly

import (
	"errors"
	"fmt"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/connectome"
)

// ErrSameArea is returned by Merge when both parents live in the same area.
var ErrSameArea = errors.New("merge parents must live in different areas")

// ErrDifferentAreas is returned by Associate when the two assemblies do not
// share an area.
var ErrDifferentAreas = errors.New("associate requires assemblies in the same area")

// Projectable is an entity the scheduler can fire: a *brain.Stimulus or an
// *Assembly. The scheduler rejects anything else.
type Projectable interface {
	Name() string
}

// Assembly is a stabilized neuron pattern hosted by an area, defined by the
// parent entities that produced it. The parent relation forms a DAG rooted
// at stimuli; firing an assembly replays that ancestry layer by layer.
type Assembly struct {
	name    string
	area    *brain.Area
	parents []Projectable

	// t is the number of firing repetitions used by the convenience
	// operations to stabilize the new pattern.
	t int
}

// New creates an assembly hosted by area with the given parents. t is the
// repetition count for the convenience operations; t <= 0 selects 1.
func New(name string, area *brain.Area, parents []Projectable, t int) *Assembly {
	if t <= 0 {
		t = 1
	}
	return &Assembly{name: name, area: area, parents: parents, t: t}
}

func (a *Assembly) Name() string { return a.name }

// Area returns the area hosting the assembly.
func (a *Assembly) Area() *brain.Area { return a.area }

// Parents returns the entities the assembly was produced from.
func (a *Assembly) Parents() []Projectable { return a.parents }

// Repeats returns t, the stabilization repetition count.
func (a *Assembly) Repeats() int { return a.t }

func (a *Assembly) String() string {
	return fmt.Sprintf("Assembly(%s in %s, %d parents)", a.name, a.area.Name(), len(a.parents))
}

// Project fires the assembly into area t times and returns the derived
// assembly hosted there. The target area's winners afterwards are the
// projected pattern.
func (a *Assembly) Project(eng *connectome.Engine, area *brain.Area) (*Assembly, error) {
	derived := New(a.name+"->"+area.Name(), area, []Projectable{a}, a.t)
	for i := 0; i < a.t; i++ {
		if err := FireAll(eng, []Projectable{a}, area); err != nil {
			return nil, fmt.Errorf("project %s: %w", a.name, err)
		}
	}
	return derived, nil
}

// ReciprocalProject projects the assembly into area and then fires the
// derived assembly back into the original area, strengthening links in
// both directions.
func (a *Assembly) ReciprocalProject(eng *connectome.Engine, area *brain.Area) (*Assembly, error) {
	derived, err := a.Project(eng, area)
	if err != nil {
		return nil, err
	}
	for i := 0; i < a.t; i++ {
		if err := FireAll(eng, []Projectable{derived}, a.area); err != nil {
			return nil, fmt.Errorf("reciprocal project %s: %w", a.name, err)
		}
	}
	return derived, nil
}

// Merge fires two assemblies from distinct areas into a third area and
// returns the merged assembly with both as parents.
func Merge(eng *connectome.Engine, a, b *Assembly, area *brain.Area) (*Assembly, error) {
	if a.area == b.area {
		return nil, fmt.Errorf("merge %s + %s: %w", a.name, b.name, ErrSameArea)
	}
	return mergeInto(eng, a, b, area)
}

// Associate strengthens the links between two assemblies hosted by the
// same area by firing both into it together.
func Associate(eng *connectome.Engine, a, b *Assembly) (*Assembly, error) {
	if a.area != b.area {
		return nil, fmt.Errorf("associate %s + %s: %w", a.name, b.name, ErrDifferentAreas)
	}
	return mergeInto(eng, a, b, a.area)
}

func mergeInto(eng *connectome.Engine, a, b *Assembly, area *brain.Area) (*Assembly, error) {
	t := max(a.t, b.t)
	merged := New(a.name+"+"+b.name, area, []Projectable{a, b}, t)
	for i := 0; i < t; i++ {
		if err := FireAll(eng, []Projectable{a, b}, area); err != nil {
			return nil, fmt.Errorf("merge %s + %s: %w", a.name, b.name, err)
		}
	}
	return merged, nil
}
