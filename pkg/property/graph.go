package property

import (
	"errors"
	"fmt"
)

var errCycleDetected = errors.New("binding cycle detected")

// Graph owns the cells of one session and the dependency edges between
// them. All binding registration and two-way linking happens at session
// build time; after that the graph only services reads and writes.
//
// The graph is session-scoped and single-threaded by design. It is built
// with the component tree and torn down with it; no cell outlives its
// graph.
type Graph struct {
	cells []*Cell
}

// NewGraph creates an empty binding graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NewCell creates a cell holding an initial plain value. The initial
// value doubles as the fallback substituted when a later-attached binding
// fails to evaluate.
func (g *Graph) NewCell(name string, initial any) *Cell {
	cell := &Cell{
		name: name,
		slot: &slot{
			value:    initial,
			fallback: initial,
			names:    []string{name},
		},
		graph: g,
	}
	g.cells = append(g.cells, cell)
	return cell
}

// Bind attaches a binding to a cell and registers its dependency edges.
//
// Registration fails if the declared dependencies would form a cycle;
// cycles are a definition error caught here, never a runtime concern.
// The cell is marked dirty so the first read evaluates the binding.
func (g *Graph) Bind(cell *Cell, binding Binding) error {
	if cell == nil {
		return errors.New("property: bind target is nil")
	}
	if binding.Compute == nil {
		return fmt.Errorf("property: binding of %s has no compute function", cell.name)
	}
	for _, dep := range binding.Deps {
		if dep == nil {
			return fmt.Errorf("property: binding of %s has a nil dependency", cell.name)
		}
		if g.reaches(dep.slot, cell.slot) || dep.slot == cell.slot {
			return fmt.Errorf("property: binding of %s depends on %s, which already depends on %s: %w",
				cell.name, dep.name, cell.name, errCycleDetected)
		}
	}

	cell.slot.binding = &binding
	cell.slot.dirty = true
	for _, dep := range binding.Deps {
		dep.slot.dependents = append(dep.slot.dependents, cell.slot)
		cell.slot.dependsOn = append(cell.slot.dependsOn, dep.slot)
	}
	for _, dep := range cell.slot.dependents {
		dep.markDirty()
	}
	return nil
}

// reaches reports whether from transitively depends on target through
// declared binding dependencies.
func (g *Graph) reaches(from, target *slot) bool {
	if from == target {
		return true
	}
	seen := map[*slot]bool{}
	var walk func(s *slot) bool
	walk = func(s *slot) bool {
		if s == target {
			return true
		}
		if seen[s] {
			return false
		}
		seen[s] = true
		for _, dep := range s.dependsOn {
			if walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// LinkTwoWay merges two cells onto a single storage slot, implementing
// the <=> operator. After linking, a write through either cell writes the
// shared slot and dirties the dependents of both sides.
//
// The right-hand cell's value (and binding, if any) wins, matching the
// language rule that `a <=> b` initializes from b. Linking fails if it
// would introduce a dependency cycle through the merged slot.
func (g *Graph) LinkTwoWay(left, right *Cell) error {
	if left == nil || right == nil {
		return errors.New("property: two-way link with unresolved side")
	}
	if left.slot == right.slot {
		return nil // already linked
	}
	if g.reaches(left.slot, right.slot) || g.reaches(right.slot, left.slot) {
		return fmt.Errorf("property: two-way link %s <=> %s: %w", left.name, right.name, errCycleDetected)
	}

	old := left.slot
	merged := right.slot

	merged.names = append(merged.names, old.names...)
	merged.dependents = append(merged.dependents, old.dependents...)
	merged.dependsOn = append(merged.dependsOn, old.dependsOn...)

	// Rewire edges that referenced the absorbed slot.
	for _, s := range old.dependsOn {
		replaceSlot(s.dependents, old, merged)
	}
	for _, s := range old.dependents {
		replaceSlot(s.dependsOn, old, merged)
	}

	// Every cell viewing the old slot now views the merged one.
	for _, cell := range g.cells {
		if cell.slot == old {
			cell.slot = merged
		}
	}

	// The left side's observers may see a new value.
	for _, dep := range merged.dependents {
		dep.markDirty()
	}
	return nil
}

// Linked reports whether two cells share a storage slot.
func (g *Graph) Linked(a, b *Cell) bool {
	return a != nil && b != nil && a.slot == b.slot
}

func replaceSlot(list []*slot, old, new *slot) {
	for i, s := range list {
		if s == old {
			list[i] = new
		}
	}
}
