package runtime

import (
	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/property"
)

// Session owns one live component tree and everything scoped to it: the
// binding graph, the global singleton groups, and the focus reference.
// Sessions are single-threaded; at most one exists per tree, and no state
// survives Teardown.
type Session struct {
	graph    *property.Graph
	globals  *property.Globals
	registry *compose.Registry
	root     *Instance
	focused  *Instance
	torn     bool
}

// BuildSession validates the description and constructs a live tree for
// the entry component. Construction is all-or-nothing: on error no
// partial tree is returned.
//
// The build runs in three phases, matching the initialization contract:
// the static tree (including conditional children whose condition holds)
// is built first, then every instance's init hooks run children-before-
// parent in declaration order, and only then are repeater instances
// materialized, each initialized once at creation in ascending index
// order.
func BuildSession(reg *compose.Registry, entry string) (*Session, error) {
	if err := compose.Validate(reg, entry); err != nil {
		return nil, err
	}

	s := &Session{
		graph:    property.NewGraph(),
		registry: reg,
	}
	s.globals = property.NewGlobals(s.graph)

	b := &builder{session: s}
	if err := b.buildGlobals(reg.Globals()); err != nil {
		return nil, err
	}

	root, err := b.instantiate(reg.Component(entry), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := b.applyLinks(); err != nil {
		return nil, err
	}
	s.root = root

	runInitPass(root)
	if err := s.syncDynamic(root); err != nil {
		return nil, err
	}
	return s, nil
}

// Graph returns the session's binding graph.
func (s *Session) Graph() *property.Graph {
	return s.graph
}

// Globals returns the session's global singleton store. This is the only
// way globals are reached; they are never package-level state.
func (s *Session) Globals() *property.Globals {
	return s.globals
}

// Root returns the root instance. Root cells are the host application's
// accessor surface for in/out/two-way properties and public callbacks.
func (s *Session) Root() *Instance {
	return s.root
}

// Focused returns the currently focused instance, or nil.
func (s *Session) Focused() *Instance {
	return s.focused
}

// Focus moves the exclusive focus reference to the given instance.
// It reports false, without side effects, if the instance is not
// focusable or does not belong to this session.
func (s *Session) Focus(inst *Instance) bool {
	if inst == nil || inst.session != s {
		return false
	}
	if inst.accessible == nil || !inst.accessible.Focusable {
		return false
	}
	s.setFocus(inst)
	return true
}

// ClearFocus removes focus from whatever holds it.
func (s *Session) ClearFocus() {
	s.setFocus(nil)
}

// setFocus flips the has-focus cells of the outgoing and incoming
// instances. Focus is exclusive: at most one instance has it.
func (s *Session) setFocus(inst *Instance) {
	if s.focused == inst {
		return
	}
	if s.focused != nil {
		if cell := s.focused.OwnCell("has-focus"); cell != nil {
			cell.Set(false)
		}
	}
	s.focused = inst
	if inst != nil {
		if cell := inst.OwnCell("has-focus"); cell != nil {
			cell.Set(true)
		}
	}
}

// Refresh re-synchronizes structural conditionals and repeaters against
// their source cells. Layout and the accessibility surface call this
// before reading the tree, so structural changes triggered by property
// writes become visible on the next read, in keeping with the pull-based
// evaluation model.
func (s *Session) Refresh() error {
	if s.torn || s.root == nil {
		return nil
	}
	return s.syncDynamic(s.root)
}

// Teardown destroys the tree, the globals, and the focus reference.
// The session must not be used afterwards.
func (s *Session) Teardown() {
	if s.torn {
		return
	}
	s.torn = true
	s.setFocus(nil)
	if s.root != nil {
		s.root.destroy()
		s.root = nil
	}
	s.globals = nil
	s.graph = nil
}

// resolveRef resolves a description reference against an instance.
//
// Resolution order: "" or "self" selects the instance's own chain (self,
// then ancestors), "parent" starts one level up, "root" selects the
// session root, any other scope tries a global group first and then a
// node ID in the session tree.
func (s *Session) resolveRef(inst *Instance, ref compose.Ref) *property.Cell {
	switch ref.Scope {
	case "", "self":
		if inst == nil {
			return nil
		}
		return inst.Cell(ref.Property)
	case "parent":
		if inst == nil || inst.parent == nil {
			return nil
		}
		return inst.parent.Cell(ref.Property)
	case "root":
		if s.root != nil {
			return s.root.Cell(ref.Property)
		}
		return nil
	}
	if cell := s.globals.Cell(ref.Scope, ref.Property); cell != nil {
		return cell
	}
	if s.root != nil {
		if target := s.root.FindByID(ref.Scope); target != nil {
			return target.OwnCell(ref.Property)
		}
	}
	return nil
}
