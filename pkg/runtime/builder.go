package runtime

import (
	"fmt"
	"time"

	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/errors"
	"github.com/go-veld/veld/pkg/property"
)

// builder constructs instances from node specs. Binding and two-way
// registration is deferred until the surrounding tree exists, so that
// references to later siblings resolve; jobs are applied in one pass at
// the end of a build.
type builder struct {
	session  *Session
	bindJobs []bindJob
	linkJobs []linkJob
}

type bindJob struct {
	inst *Instance
	cell *property.Cell
	spec *compose.BindingSpec
	prop string
}

type linkJob struct {
	inst *Instance
	cell *property.Cell
	ref  compose.Ref
	prop string
}

// buildCtx carries use-site state into a component instantiation.
// Params and overrides apply only to the node being built; useChildren
// travel down to the slot; repeater index/model apply to the root of a
// dynamically built subtree.
type buildCtx struct {
	params        []compose.ParamSpec
	overrides     []compose.PropertySpec
	useChildren   []*compose.NodeSpec
	useInit       compose.InitHook
	useAccessible *compose.AccessibleSpec
	useID         string

	repeatIndex int
	repeatModel any
	hasModel    bool
}

func staticCtx() *buildCtx {
	return &buildCtx{repeatIndex: -1}
}

// buildGlobals instantiates the singleton groups. Globals exist before
// any instance so component bindings can reference them.
func (b *builder) buildGlobals(specs []compose.GlobalSpec) error {
	graph := b.session.graph
	for _, spec := range specs {
		group, err := b.session.globals.Define(spec.Name)
		if err != nil {
			return &errors.BuildError{Component: spec.Name, Err: err, Timestamp: time.Now()}
		}
		for _, p := range spec.Properties {
			cell := group.NewCell(graph, p.Name, p.Value)
			if p.Binding != nil {
				b.bindJobs = append(b.bindJobs, bindJob{cell: cell, spec: p.Binding, prop: spec.Name + "." + p.Name})
			}
			if p.TwoWay != nil {
				b.linkJobs = append(b.linkJobs, linkJob{cell: cell, ref: *p.TwoWay, prop: spec.Name + "." + p.Name})
			}
		}
	}
	return nil
}

// instantiate builds a component definition as an instance tree.
func (b *builder) instantiate(comp *compose.ComponentSpec, parent *Instance, overrides []compose.PropertySpec, useChildren []*compose.NodeSpec) (*Instance, error) {
	ctx := staticCtx()
	ctx.params = comp.Params
	ctx.overrides = overrides
	ctx.useChildren = useChildren
	return b.buildNode(comp.Root, parent, ctx)
}

// buildNode interprets one node of the closed description variant.
func (b *builder) buildNode(spec *compose.NodeSpec, parent *Instance, ctx *buildCtx) (*Instance, error) {
	switch spec.Kind {
	case compose.KindUse:
		target := b.session.registry.Component(spec.Component)
		if target == nil {
			return nil, &errors.BuildError{
				Node: spec.ID, Err: fmt.Errorf("unknown component %q", spec.Component), Timestamp: time.Now(),
			}
		}
		childCtx := &buildCtx{
			params:        target.Params,
			overrides:     spec.Properties,
			useChildren:   spec.Children,
			useInit:       spec.Init,
			useAccessible: spec.Accessible,
			useID:         spec.ID,
			repeatIndex:   ctx.repeatIndex,
			repeatModel:   ctx.repeatModel,
			hasModel:      ctx.hasModel,
		}
		return b.buildNode(target.Root, parent, childCtx)

	case compose.KindSlot:
		return nil, &errors.BuildError{
			Err: fmt.Errorf("slot node cannot be a component root"), Timestamp: time.Now(),
		}
	}

	inst := &Instance{
		spec:    spec,
		session: b.session,
		parent:  parent,
		cells:   make(map[string]*property.Cell),
		index:   ctx.repeatIndex,
	}
	if ctx.useID != "" {
		inst.id = ctx.useID
	} else {
		inst.id = spec.ID
	}
	if parent == nil && b.session.root == nil {
		// Root cells must resolve for "root"-scoped references registered
		// later in this same build.
		b.session.root = inst
	}

	inst.accessible = spec.Accessible
	if ctx.useAccessible != nil {
		inst.accessible = ctx.useAccessible
	}

	declareImplicitCells(inst)
	if inst.accessible != nil && inst.accessible.Focusable {
		inst.newCell("has-focus", false)
	}
	if ctx.repeatIndex >= 0 {
		inst.newCell("index", ctx.repeatIndex)
	}
	if ctx.hasModel {
		inst.newCell("model", ctx.repeatModel)
	}

	// Use-site assignments take precedence over the component's declared
	// defaults for the same property; merging by name before any cell is
	// bound guarantees the override is in place before the instance's own
	// init can observe it.
	for _, p := range mergeProperties(ctx.params, spec.Properties, ctx.overrides) {
		cell := inst.newCell(p.Name, p.Value)
		switch {
		case p.Binding != nil:
			b.bindJobs = append(b.bindJobs, bindJob{inst: inst, cell: cell, spec: p.Binding, prop: p.Name})
		case p.TwoWay != nil:
			b.linkJobs = append(b.linkJobs, linkJob{inst: inst, cell: cell, ref: *p.TwoWay, prop: p.Name})
		case p.Value != nil:
			cell.Set(p.Value)
		}
	}

	if spec.Init != nil {
		inst.initHooks = append(inst.initHooks, spec.Init)
	}
	if ctx.useInit != nil {
		inst.initHooks = append(inst.initHooks, ctx.useInit)
	}

	for _, childSpec := range spec.Children {
		switch {
		case childSpec.Kind == compose.KindSlot:
			// Inclusion point: splice the use-site children here so they
			// initialize as if declared at this position.
			for _, embedded := range ctx.useChildren {
				child, err := b.buildNode(embedded, inst, staticCtx())
				if err != nil {
					return nil, err
				}
				inst.slots = append(inst.slots, &childSlot{static: child})
			}
		case childSpec.If != nil:
			inst.slots = append(inst.slots, &childSlot{cond: &condState{spec: childSpec, useChildren: ctx.useChildren}})
		default:
			childCtx := staticCtx()
			childCtx.useChildren = ctx.useChildren
			child, err := b.buildNode(childSpec, inst, childCtx)
			if err != nil {
				return nil, err
			}
			inst.slots = append(inst.slots, &childSlot{static: child})
		}
	}

	if spec.Repeat != nil {
		inst.slots = append(inst.slots, &childSlot{repeat: &repeatState{spec: spec.Repeat}})
	}
	return inst, nil
}

// applyBindings resolves deferred binding registrations. An unresolved
// reference or a dependency cycle is fatal to the build.
func (b *builder) applyBindings() error {
	for _, job := range b.bindJobs {
		cells := make([]*property.Cell, len(job.spec.Deps))
		for i, ref := range job.spec.Deps {
			cell := b.session.resolveRef(job.inst, ref)
			if cell == nil {
				return &errors.BuildError{
					Node:     instancePath(job.inst),
					Property: job.prop,
					Err:      fmt.Errorf("unresolved binding dependency %s", refString(ref)),
				}
			}
			cells[i] = cell
		}
		compute := job.spec.Compute
		err := b.session.graph.Bind(job.cell, property.Binding{
			Deps:    cells,
			Compute: func() any { return compute(cells) },
		})
		if err != nil {
			return &errors.BuildError{Node: instancePath(job.inst), Property: job.prop, Err: err}
		}
	}
	b.bindJobs = nil
	return nil
}

// applyLinks resolves deferred two-way links. An unresolved side is a
// definition error.
func (b *builder) applyLinks() error {
	if err := b.applyBindings(); err != nil {
		return err
	}
	for _, job := range b.linkJobs {
		target := b.session.resolveRef(job.inst, job.ref)
		if target == nil {
			return &errors.BuildError{
				Node:     instancePath(job.inst),
				Property: job.prop,
				Err:      fmt.Errorf("unresolved two-way link target %s", refString(job.ref)),
			}
		}
		if err := b.session.graph.LinkTwoWay(job.cell, target); err != nil {
			return &errors.BuildError{Node: instancePath(job.inst), Property: job.prop, Err: err}
		}
	}
	b.linkJobs = nil
	return nil
}

// declareImplicitCells gives every instance the cells its kind implies.
func declareImplicitCells(inst *Instance) {
	inst.newCell("opacity", 1.0)
	inst.newCell("visible", true)
	switch inst.spec.Kind {
	case compose.KindRect:
		inst.newCell("width", 0.0)
		inst.newCell("height", 0.0)
	case compose.KindText:
		inst.newCell("text", "")
		inst.newCell("font-size", 12.0)
	case compose.KindButton:
		inst.newCell("text", "")
		inst.newCell("pressed", false)
		inst.newCell("clicked", nil)
	case compose.KindCheckbox:
		inst.newCell("checked", false)
		inst.newCell("clicked", nil)
		inst.newCell("size", 20.0)
	case compose.KindGroup:
		inst.newCell("spacing", 0.0)
		inst.newCell("padding", 0.0)
		inst.newCell("direction", "column")
		inst.newCell("align", "start")
	}
}

// mergeProperties flattens parameter defaults, node declarations, and
// use-site overrides into one list; later entries win by name.
func mergeProperties(params []compose.ParamSpec, declared, overrides []compose.PropertySpec) []compose.PropertySpec {
	var merged []compose.PropertySpec
	index := map[string]int{}
	add := func(p compose.PropertySpec) {
		if i, ok := index[p.Name]; ok {
			merged[i] = p
			return
		}
		index[p.Name] = len(merged)
		merged = append(merged, p)
	}
	for _, param := range params {
		add(compose.PropertySpec{Name: param.Name, Value: param.Default})
	}
	for _, p := range declared {
		add(p)
	}
	for _, p := range overrides {
		add(p)
	}
	return merged
}

func instancePath(inst *Instance) string {
	if inst == nil {
		return ""
	}
	name := inst.id
	if name == "" {
		name = inst.spec.Kind.String()
	}
	if inst.parent == nil {
		return name
	}
	return instancePath(inst.parent) + "/" + name
}

func refString(ref compose.Ref) string {
	if ref.Scope == "" {
		return ref.Property
	}
	return ref.Scope + "." + ref.Property
}
