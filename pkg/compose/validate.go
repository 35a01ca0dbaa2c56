package compose

import (
	"fmt"
	"time"

	"github.com/go-veld/veld/pkg/errors"
)

// Validate checks a registry and an entry component for definition errors:
// unknown component references, recursive instantiation, multiple
// conditional children, multiple slots, slots inside repeater templates,
// malformed property declarations, use-site overrides of undeclared
// parameters, and duplicate globals.
//
// Build-time errors are fatal: the runtime refuses to construct a tree
// from a description that fails validation.
func Validate(reg *Registry, entry string) error {
	root := reg.Component(entry)
	if root == nil {
		return buildErr(entry, "", "", fmt.Errorf("unknown entry component"))
	}

	seen := map[string]bool{}
	for _, g := range reg.Globals() {
		if seen[g.Name] {
			return buildErr(entry, "", "", fmt.Errorf("global %q declared twice", g.Name))
		}
		seen[g.Name] = true
		for _, p := range g.Properties {
			if err := checkProperty(p); err != nil {
				return buildErr(entry, "global "+g.Name, p.Name, err)
			}
		}
	}

	return validateComponent(reg, root, map[string]bool{entry: true})
}

func validateComponent(reg *Registry, comp *ComponentSpec, active map[string]bool) error {
	if comp.Root == nil {
		return buildErr(comp.Name, "", "", fmt.Errorf("component has no root node"))
	}
	slots := 0
	if err := validateNode(reg, comp, comp.Root, comp.Name+"/root", &slots, active); err != nil {
		return err
	}
	if slots > 1 {
		return buildErr(comp.Name, "", "", fmt.Errorf("component declares %d slots, at most one allowed", slots))
	}
	return nil
}

func validateNode(reg *Registry, comp *ComponentSpec, node *NodeSpec, path string, slots *int, active map[string]bool) error {
	if node.ID != "" {
		path = path + "#" + node.ID
	}

	for _, p := range node.Properties {
		if err := checkProperty(p); err != nil {
			return buildErr(comp.Name, path, p.Name, err)
		}
	}

	switch node.Kind {
	case KindSlot:
		*slots++
		if len(node.Children) > 0 || node.Repeat != nil {
			return buildErr(comp.Name, path, "", fmt.Errorf("slot nodes cannot declare children"))
		}
	case KindUse:
		target := reg.Component(node.Component)
		if target == nil {
			return buildErr(comp.Name, path, "", fmt.Errorf("unknown component %q", node.Component))
		}
		if active[node.Component] {
			return buildErr(comp.Name, path, "", fmt.Errorf("recursive instantiation of %q", node.Component))
		}
		declared := map[string]bool{}
		for _, param := range target.Params {
			declared[param.Name] = true
		}
		for _, p := range node.Properties {
			if !declared[p.Name] {
				return buildErr(comp.Name, path, p.Name,
					fmt.Errorf("component %q declares no parameter %q", node.Component, p.Name))
			}
		}
		if len(node.Children) > 0 && !hasSlot(target.Root) {
			return buildErr(comp.Name, path, "",
				fmt.Errorf("component %q accepts no children (no slot)", node.Component))
		}
		active[node.Component] = true
		if err := validateComponent(reg, target, active); err != nil {
			return err
		}
		delete(active, node.Component)
	}

	if node.Repeat != nil {
		if node.Repeat.Template == nil {
			return buildErr(comp.Name, path, "", fmt.Errorf("repeater has no template"))
		}
		if node.Repeat.Collection.Property == "" {
			return buildErr(comp.Name, path, "", fmt.Errorf("repeater has no collection reference"))
		}
		templateSlots := 0
		if err := validateNode(reg, comp, node.Repeat.Template, path+"/template", &templateSlots, active); err != nil {
			return err
		}
		if templateSlots > 0 {
			// The slot splices the use site's children exactly once; a
			// repeated slot would duplicate them per instance.
			return buildErr(comp.Name, path, "", fmt.Errorf("slot cannot appear inside a repeater template"))
		}
	}

	conditionals := 0
	for i, child := range node.Children {
		if child.If != nil {
			conditionals++
			if child.If.Property == "" {
				return buildErr(comp.Name, childPath(path, child, i), "",
					fmt.Errorf("conditional child has no condition reference"))
			}
		}
		if err := validateNode(reg, comp, child, childPath(path, child, i), slots, active); err != nil {
			return err
		}
	}
	if conditionals > 1 {
		return buildErr(comp.Name, path, "",
			fmt.Errorf("node declares %d conditional children, at most one allowed", conditionals))
	}
	return nil
}

func checkProperty(p PropertySpec) error {
	if p.Name == "" {
		return fmt.Errorf("property has no name")
	}
	if p.Binding != nil && p.TwoWay != nil {
		return fmt.Errorf("property declares both a binding and a two-way link")
	}
	if p.Binding != nil && p.Binding.Compute == nil {
		return fmt.Errorf("binding has no compute function")
	}
	if p.TwoWay != nil && p.TwoWay.Property == "" {
		return fmt.Errorf("two-way link has no target")
	}
	return nil
}

func hasSlot(node *NodeSpec) bool {
	if node == nil {
		return false
	}
	if node.Kind == KindSlot {
		return true
	}
	for _, child := range node.Children {
		if hasSlot(child) {
			return true
		}
	}
	return false
}

func childPath(parent string, child *NodeSpec, index int) string {
	if child.ID != "" {
		return parent + "/" + child.ID
	}
	return fmt.Sprintf("%s/%s[%d]", parent, child.Kind, index)
}

func buildErr(component, node, prop string, err error) error {
	return &errors.BuildError{
		Component: component,
		Node:      node,
		Property:  prop,
		Err:       err,
		Timestamp: time.Now(),
	}
}
