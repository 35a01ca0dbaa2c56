package property

import "fmt"

// Globals holds the named singleton property groups of one session.
//
// A global group is instantiated once at session build and reachable by
// qualified name from any component instance. It is owned by the session
// (never a package-level static) and torn down with the tree; its cells
// follow the ordinary graph contract, so instances sharing a global cell
// share its dirtiness.
type Globals struct {
	graph  *Graph
	groups map[string]*Group
	order  []string
}

// Group is one named singleton set of cells.
type Group struct {
	name  string
	cells map[string]*Cell
	order []string
}

// NewGlobals creates an empty globals store backed by the given graph.
func NewGlobals(graph *Graph) *Globals {
	return &Globals{
		graph:  graph,
		groups: make(map[string]*Group),
	}
}

// Define creates a named group. Defining the same name twice is a
// definition error.
func (g *Globals) Define(name string) (*Group, error) {
	if _, exists := g.groups[name]; exists {
		return nil, fmt.Errorf("property: global %q defined twice", name)
	}
	group := &Group{
		name:  name,
		cells: make(map[string]*Cell),
	}
	g.groups[name] = group
	g.order = append(g.order, name)
	return group, nil
}

// Group returns a named group, or nil if it was never defined.
func (g *Globals) Group(name string) *Group {
	return g.groups[name]
}

// Cell resolves a qualified name like "Theme.accent". It returns nil for
// an unknown group or property.
func (g *Globals) Cell(group, property string) *Cell {
	grp := g.groups[group]
	if grp == nil {
		return nil
	}
	return grp.cells[property]
}

// Names returns the defined group names in definition order.
func (g *Globals) Names() []string {
	return append([]string(nil), g.order...)
}

// NewCell adds a cell to the group. Adding a duplicate property name
// returns the existing cell unchanged.
func (grp *Group) NewCell(graph *Graph, name string, initial any) *Cell {
	if existing, ok := grp.cells[name]; ok {
		return existing
	}
	cell := graph.NewCell(grp.name+"."+name, initial)
	grp.cells[name] = cell
	grp.order = append(grp.order, name)
	return cell
}

// Cell returns a cell by property name, or nil.
func (grp *Group) Cell(name string) *Cell {
	return grp.cells[name]
}

// Names returns the group's property names in definition order.
func (grp *Group) Names() []string {
	return append([]string(nil), grp.order...)
}
