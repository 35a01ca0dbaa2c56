// Package compose defines the typed component description consumed by the
// runtime's tree builder.
//
// A description is a tree of NodeSpec values, a closed tagged variant: the
// Kind discriminant selects the payload fields that matter, and the builder
// interprets the variant. Reusable definitions are ComponentSpec values
// collected in a Registry together with global singleton declarations.
//
// The compiler front end that produces descriptions from source markup is
// an external collaborator; hosts may also construct descriptions directly
// or load the declarative subset from YAML (see LoadYAML).
package compose

import "github.com/go-veld/veld/pkg/property"

// Kind discriminates the node variants the builder understands.
type Kind int

const (
	// KindGroup is a plain container with no intrinsic size.
	KindGroup Kind = iota
	// KindRect is a sized rectangle; geometry comes from width/height cells.
	KindRect
	// KindText is a text element measured from its content.
	KindText
	// KindCheckbox is a checkable interactive control.
	KindCheckbox
	// KindButton is an activatable interactive control.
	KindButton
	// KindUse instantiates a named ComponentSpec at this point.
	KindUse
	// KindSlot marks the insertion point for use-site children inside a
	// component definition. At most one per definition.
	KindSlot
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindRect:
		return "rect"
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindButton:
		return "button"
	case KindUse:
		return "use"
	case KindSlot:
		return "slot"
	default:
		return "invalid"
	}
}

// InstanceAccess is the view of a live instance handed to init hooks.
// The concrete type is the runtime's ComponentInstance; the indirection
// keeps descriptions free of a runtime dependency.
type InstanceAccess interface {
	// Cell resolves a property cell by name on the instance, walking up to
	// ancestors and globals the same way bindings resolve references.
	Cell(name string) *property.Cell
	// Index returns the repeater index, or -1 outside a repeater.
	Index() int
}

// InitHook runs exactly once when an instance is created, after all of its
// static structural children have been initialized.
type InitHook func(inst InstanceAccess)

// Ref names a property cell relative to the node being built.
//
// Scope selects where to look: "" or "self" for the node's own cells,
// "parent" for the nearest ancestor owning the property, "root" for the
// session root, a global group name for singleton cells, or a node ID to
// address a specific node in the built tree.
type Ref struct {
	Scope    string
	Property string
}

// SelfRef names a property on the node itself.
func SelfRef(property string) Ref {
	return Ref{Property: property}
}

// BindingSpec declares a computed property. Deps lists every reference the
// compute function reads; the builder resolves them to cells and registers
// the binding with the graph, which rejects cycles at build time.
type BindingSpec struct {
	Deps    []Ref
	Compute func(deps []*property.Cell) any
}

// PropertySpec declares one property of a node: a literal value, a
// binding, or a two-way link to another cell. At most one of Binding and
// TwoWay may be set; Value doubles as the fallback when a binding fails.
type PropertySpec struct {
	Name    string
	Value   any
	Binding *BindingSpec
	TwoWay  *Ref
}

// RepeatSpec materializes one instance of Template per element of the
// referenced collection cell. The cell may hold an int count or a []any
// model; each instance sees its position as the implicit "index" cell and
// the element value (if any) as "model".
type RepeatSpec struct {
	Collection Ref
	Template   *NodeSpec
}

// AccessibleSpec carries the accessibility metadata of an interactive or
// labelled node. ValueFrom and CheckedFrom name property cells on the
// node; roles that are not valued or checkable leave them empty.
type AccessibleSpec struct {
	Role        Role
	Label       string
	Description string
	ValueFrom   string
	CheckedFrom string
	Checkable   bool
	Focusable   bool
}

// Role identifies the accessibility role of a node.
type Role int

const (
	RoleNone Role = iota
	RoleText
	RoleButton
	RoleCheckbox
)

func (r Role) String() string {
	switch r {
	case RoleText:
		return "text"
	case RoleButton:
		return "button"
	case RoleCheckbox:
		return "checkbox"
	default:
		return "none"
	}
}

// NodeSpec is one node of a component description.
type NodeSpec struct {
	Kind Kind

	// ID optionally names the node for diagnostics and Ref lookup.
	ID string

	// Component names the definition to instantiate when Kind is KindUse.
	Component string

	// Properties declares the node's property cells.
	Properties []PropertySpec

	// Init is the node's init hook, run once per created instance.
	Init InitHook

	// Children are the static structural children in declaration order.
	Children []*NodeSpec

	// If makes the node a structural conditional: the subtree exists only
	// while the referenced boolean cell is true. A false condition removes
	// the node from the tree, layout, and accessibility entirely.
	If *Ref

	// Repeat makes the node a repeater host; at most one per node.
	Repeat *RepeatSpec

	// Accessible is the node's accessibility metadata.
	Accessible *AccessibleSpec
}

// ParamSpec declares a component parameter: a property on the definition's
// root that use sites may override.
type ParamSpec struct {
	Name    string
	Default any
	// TwoWay marks the parameter as linkable with <=> at the use site.
	TwoWay bool
}

// ComponentSpec is a reusable, named component definition.
type ComponentSpec struct {
	Name   string
	Params []ParamSpec
	Root   *NodeSpec
}

// GlobalSpec declares a named singleton property group.
type GlobalSpec struct {
	Name       string
	Properties []PropertySpec
}

// Registry collects the component definitions and globals of one
// description, keyed by name.
type Registry struct {
	components map[string]*ComponentSpec
	globals    []GlobalSpec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]*ComponentSpec)}
}

// Register adds a component definition, replacing any previous definition
// with the same name.
func (r *Registry) Register(spec *ComponentSpec) {
	r.components[spec.Name] = spec
}

// Component returns a definition by name, or nil.
func (r *Registry) Component(name string) *ComponentSpec {
	return r.components[name]
}

// AddGlobal declares a global singleton group.
func (r *Registry) AddGlobal(g GlobalSpec) {
	r.globals = append(r.globals, g)
}

// Globals returns the declared globals in declaration order.
func (r *Registry) Globals() []GlobalSpec {
	return r.globals
}
