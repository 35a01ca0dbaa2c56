// Package runtime builds live component trees from descriptions and owns
// their session state: the binding graph, global singletons, and the
// focus reference.
//
// Ownership is strictly tree-shaped. Parent references exist only for
// reference resolution and event bubbling and are non-owning; destroying
// a parent (or tearing down the session) destroys the subtree.
package runtime

import (
	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/property"
)

// Instance is one node of a live component tree.
type Instance struct {
	spec    *compose.NodeSpec
	session *Session
	parent  *Instance

	// id is the effective node ID: the use-site ID when the instance was
	// created through a KindUse node, otherwise the description node's ID.
	id string

	cells map[string]*property.Cell
	order []string

	// slots hold the ordered child structure: static children,
	// the conditional child, and repeater output, in declaration order.
	slots []*childSlot

	initHooks   []compose.InitHook
	initialized bool

	accessible *compose.AccessibleSpec

	// index is the repeater index, or -1 for non-repeated instances.
	index int
}

// childSlot is one ordered child position. Exactly one field is set.
type childSlot struct {
	static *Instance
	cond   *condState
	repeat *repeatState
}

// condState tracks a structural conditional child. The use-site children
// are captured at build time so a slot under the conditional still
// splices them whenever the subtree is created.
type condState struct {
	spec        *compose.NodeSpec
	useChildren []*compose.NodeSpec
	cond        *property.Cell
	active      *Instance
}

// repeatState is the index-keyed slot arena of one repeater.
type repeatState struct {
	spec      *compose.RepeatSpec
	source    *property.Cell
	instances []*Instance
}

// Kind returns the node kind the instance was built from.
func (inst *Instance) Kind() compose.Kind {
	return inst.spec.Kind
}

// ID returns the instance's effective node ID, if any.
func (inst *Instance) ID() string {
	return inst.id
}

// Parent returns the parent instance. The reference is non-owning.
func (inst *Instance) Parent() *Instance {
	return inst.parent
}

// Index returns the repeater index, or -1 outside a repeater.
func (inst *Instance) Index() int {
	return inst.index
}

// Accessible returns the node's accessibility metadata, or nil.
func (inst *Instance) Accessible() *compose.AccessibleSpec {
	return inst.accessible
}

// Children returns the current structural children in tree order:
// static children and active conditional/repeated instances interleaved
// at their declaration positions.
func (inst *Instance) Children() []*Instance {
	var out []*Instance
	for _, slot := range inst.slots {
		switch {
		case slot.static != nil:
			out = append(out, slot.static)
		case slot.cond != nil && slot.cond.active != nil:
			out = append(out, slot.cond.active)
		case slot.repeat != nil:
			out = append(out, slot.repeat.instances...)
		}
	}
	return out
}

// OwnCell returns a cell declared on this instance itself, or nil.
func (inst *Instance) OwnCell(name string) *property.Cell {
	return inst.cells[name]
}

// Cell resolves a bare property name on this instance, walking up the
// ancestor chain. Returns nil when nothing matches; qualified references
// (globals, root, node IDs) resolve through the session instead.
func (inst *Instance) Cell(name string) *property.Cell {
	for cur := inst; cur != nil; cur = cur.parent {
		if cell := cur.cells[name]; cell != nil {
			return cell
		}
	}
	return nil
}

// CellNames returns the instance's own property names in declaration order.
func (inst *Instance) CellNames() []string {
	return append([]string(nil), inst.order...)
}

// Visit walks the subtree in tree order (depth-first pre-order).
// The visitor returns false to stop the walk.
func (inst *Instance) Visit(visitor func(*Instance) bool) bool {
	if !visitor(inst) {
		return false
	}
	for _, child := range inst.Children() {
		if !child.Visit(visitor) {
			return false
		}
	}
	return true
}

// FindByID returns the first instance in the subtree whose description
// node carries the given ID, or nil.
func (inst *Instance) FindByID(id string) *Instance {
	var found *Instance
	inst.Visit(func(i *Instance) bool {
		if i.id == id {
			found = i
			return false
		}
		return true
	})
	return found
}

// newCell declares a cell on the instance. Redeclaring a name returns the
// existing cell so use-site overrides can adjust it in place.
func (inst *Instance) newCell(name string, initial any) *property.Cell {
	if existing, ok := inst.cells[name]; ok {
		return existing
	}
	debugName := inst.spec.Kind.String()
	if inst.id != "" {
		debugName = inst.id
	}
	cell := inst.session.graph.NewCell(debugName+"."+name, initial)
	inst.cells[name] = cell
	inst.order = append(inst.order, name)
	return cell
}

// containsFocus reports whether the session focus sits in this subtree.
func (inst *Instance) containsFocus() bool {
	focused := inst.session.focused
	for cur := focused; cur != nil; cur = cur.parent {
		if cur == inst {
			return true
		}
	}
	return false
}

// destroy detaches the subtree from the session. Focus inside the subtree
// is cleared; cells stay in the session graph until teardown.
func (inst *Instance) destroy() {
	if inst.containsFocus() {
		inst.session.setFocus(nil)
	}
	for _, child := range inst.Children() {
		child.destroy()
	}
	inst.parent = nil
	inst.slots = nil
}
