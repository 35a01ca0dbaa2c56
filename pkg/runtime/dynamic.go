package runtime

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/errors"
)

// runInitPass fires init hooks over a freshly built subtree: all static
// structural children fully initialized (recursively, in declaration
// order) before the instance's own hooks run. Hooks run exactly once per
// instance; rebuilding replaces instances rather than re-initializing
// them.
func runInitPass(inst *Instance) {
	for _, child := range inst.Children() {
		runInitPass(child)
	}
	if inst.initialized {
		return
	}
	inst.initialized = true
	for _, hook := range inst.initHooks {
		hook(inst)
	}
}

// syncDynamic re-synchronizes conditional children and repeaters in the
// subtree against their source cells.
func (s *Session) syncDynamic(inst *Instance) error {
	for _, slot := range inst.slots {
		switch {
		case slot.static != nil:
			if err := s.syncDynamic(slot.static); err != nil {
				return err
			}

		case slot.cond != nil:
			if err := s.syncConditional(inst, slot.cond); err != nil {
				return err
			}

		case slot.repeat != nil:
			if err := s.syncRepeater(inst, slot.repeat); err != nil {
				return err
			}
		}
	}
	return nil
}

// syncConditional adds or removes a structural conditional subtree. The
// subtree is created (and initialized, once) when the condition turns
// true and destroyed outright when it turns false; it never lingers as a
// hidden node.
func (s *Session) syncConditional(parent *Instance, state *condState) error {
	if state.cond == nil {
		state.cond = s.resolveRef(parent, *state.spec.If)
		if state.cond == nil {
			return &errors.BuildError{
				Node:      instancePath(parent),
				Err:       fmt.Errorf("unresolved condition %s", refString(*state.spec.If)),
				Timestamp: time.Now(),
			}
		}
	}

	active := state.cond.GetBool()
	switch {
	case active && state.active == nil:
		child, err := s.buildDynamic(state.spec, parent, state.useChildren, -1, nil, false)
		if err != nil {
			return err
		}
		state.active = child
	case !active && state.active != nil:
		state.active.destroy()
		state.active = nil
	case active:
		return s.syncDynamic(state.active)
	}
	return nil
}

// syncRepeater diffs the repeater's slot arena against its collection.
// Removed indices are destroyed, appended indices are built and
// initialized at creation in ascending order, and retained slots keep
// their instances untouched apart from a model update — their init never
// re-runs.
func (s *Session) syncRepeater(host *Instance, state *repeatState) error {
	if state.source == nil {
		state.source = s.resolveRef(host, state.spec.Collection)
		if state.source == nil {
			return &errors.BuildError{
				Node:      instancePath(host),
				Err:       fmt.Errorf("unresolved repeater collection %s", refString(state.spec.Collection)),
				Timestamp: time.Now(),
			}
		}
	}

	count, models, hasModels := collectionValues(state.source.Get())

	for i := count; i < len(state.instances); i++ {
		state.instances[i].destroy()
	}
	if count < len(state.instances) {
		state.instances = state.instances[:count]
	}

	for i, existing := range state.instances {
		if hasModels {
			model := existing.OwnCell("model")
			if model != nil && !reflect.DeepEqual(model.Get(), models[i]) {
				model.Set(models[i])
			}
		}
		if err := s.syncDynamic(existing); err != nil {
			return err
		}
	}

	for i := len(state.instances); i < count; i++ {
		var model any
		if hasModels {
			model = models[i]
		}
		child, err := s.buildDynamic(state.spec.Template, host, nil, i, model, hasModels)
		if err != nil {
			return err
		}
		state.instances = append(state.instances, child)
	}
	return nil
}

// buildDynamic builds one dynamically created subtree (a conditional
// child or a repeater instance), registers its bindings and links, runs
// its init pass, and materializes any repeaters nested inside it.
func (s *Session) buildDynamic(spec *compose.NodeSpec, parent *Instance, useChildren []*compose.NodeSpec, index int, model any, hasModel bool) (*Instance, error) {
	b := &builder{session: s}
	ctx := staticCtx()
	ctx.useChildren = useChildren
	ctx.repeatIndex = index
	ctx.repeatModel = model
	ctx.hasModel = hasModel

	inst, err := b.buildNode(spec, parent, ctx)
	if err != nil {
		return nil, err
	}
	if err := b.applyLinks(); err != nil {
		return nil, err
	}
	runInitPass(inst)
	if err := s.syncDynamic(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// collectionValues interprets a repeater source value: an int is a bare
// count, a []any is a model list. Anything else repeats zero times.
func collectionValues(v any) (count int, models []any, hasModels bool) {
	switch val := v.(type) {
	case int:
		return val, nil, false
	case float64:
		return int(val), nil, false
	case []any:
		return len(val), val, true
	}
	return 0, nil, false
}
