package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses the declarative subset of a component description:
// structure, literal properties, two-way links, condition and collection
// references, and accessible metadata. Binding compute functions and init
// hooks are code, not data; hosts attach them to the returned specs.
//
// The document names its entry component:
//
//	entry: Main
//	globals:
//	  - name: Theme
//	    properties:
//	      accent: blue
//	components:
//	  - name: Main
//	    root:
//	      kind: group
//	      children:
//	        - kind: text
//	          properties:
//	            text: hello
func LoadYAML(data []byte) (*Registry, string, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("compose: failed to parse description: %w", err)
	}
	if doc.Entry == "" {
		return nil, "", fmt.Errorf("compose: description names no entry component")
	}

	reg := NewRegistry()
	for _, g := range doc.Globals {
		if g.Name == "" {
			return nil, "", fmt.Errorf("compose: global without a name")
		}
		reg.AddGlobal(GlobalSpec{Name: g.Name, Properties: yamlProperties(g.Properties)})
	}
	for _, c := range doc.Components {
		if c.Name == "" {
			return nil, "", fmt.Errorf("compose: component without a name")
		}
		root, err := convertNode(c.Root)
		if err != nil {
			return nil, "", fmt.Errorf("compose: component %q: %w", c.Name, err)
		}
		spec := &ComponentSpec{Name: c.Name, Root: root}
		for _, p := range c.Params {
			spec.Params = append(spec.Params, ParamSpec{Name: p.Name, Default: p.Default, TwoWay: p.TwoWay})
		}
		reg.Register(spec)
	}
	if err := Validate(reg, doc.Entry); err != nil {
		return nil, "", err
	}
	return reg, doc.Entry, nil
}

type yamlDocument struct {
	Entry      string          `yaml:"entry"`
	Globals    []yamlGlobal    `yaml:"globals"`
	Components []yamlComponent `yaml:"components"`
}

type yamlGlobal struct {
	Name       string         `yaml:"name"`
	Properties map[string]any `yaml:"properties"`
}

type yamlComponent struct {
	Name   string      `yaml:"name"`
	Params []yamlParam `yaml:"params"`
	Root   *yamlNode   `yaml:"root"`
}

type yamlParam struct {
	Name    string `yaml:"name"`
	Default any    `yaml:"default"`
	TwoWay  bool   `yaml:"two-way"`
}

type yamlNode struct {
	Kind       string          `yaml:"kind"`
	ID         string          `yaml:"id"`
	Component  string          `yaml:"component"`
	Properties map[string]any  `yaml:"properties"`
	If         string          `yaml:"if"`
	Repeat     *yamlRepeat     `yaml:"repeat"`
	Accessible *yamlAccessible `yaml:"accessible"`
	Children   []*yamlNode     `yaml:"children"`
}

type yamlRepeat struct {
	Collection string    `yaml:"collection"`
	Template   *yamlNode `yaml:"template"`
}

type yamlAccessible struct {
	Role        string `yaml:"role"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	ValueFrom   string `yaml:"value-from"`
	CheckedFrom string `yaml:"checked-from"`
	Checkable   bool   `yaml:"checkable"`
	Focusable   bool   `yaml:"focusable"`
}

func convertNode(n *yamlNode) (*NodeSpec, error) {
	if n == nil {
		return nil, fmt.Errorf("missing node")
	}
	kind, err := parseKind(n.Kind)
	if err != nil {
		return nil, err
	}
	spec := &NodeSpec{
		Kind:       kind,
		ID:         n.ID,
		Component:  n.Component,
		Properties: yamlProperties(n.Properties),
	}
	if n.If != "" {
		ref := ParseRef(n.If)
		spec.If = &ref
	}
	if n.Repeat != nil {
		template, err := convertNode(n.Repeat.Template)
		if err != nil {
			return nil, fmt.Errorf("repeater template: %w", err)
		}
		spec.Repeat = &RepeatSpec{Collection: ParseRef(n.Repeat.Collection), Template: template}
	}
	if n.Accessible != nil {
		spec.Accessible = &AccessibleSpec{
			Role:        parseRole(n.Accessible.Role),
			Label:       n.Accessible.Label,
			Description: n.Accessible.Description,
			ValueFrom:   n.Accessible.ValueFrom,
			CheckedFrom: n.Accessible.CheckedFrom,
			Checkable:   n.Accessible.Checkable,
			Focusable:   n.Accessible.Focusable,
		}
	}
	for _, child := range n.Children {
		cs, err := convertNode(child)
		if err != nil {
			return nil, err
		}
		spec.Children = append(spec.Children, cs)
	}
	return spec, nil
}

// yamlProperties converts a YAML property map. A scalar is a literal; a
// map with a "two-way" key declares a link:
//
//	properties:
//	  width: 120
//	  checked: {two-way: root.is-checked}
func yamlProperties(props map[string]any) []PropertySpec {
	specs := make([]PropertySpec, 0, len(props))
	for name, raw := range props {
		spec := PropertySpec{Name: name}
		if m, ok := raw.(map[string]any); ok {
			if target, ok := m["two-way"].(string); ok {
				ref := ParseRef(target)
				spec.TwoWay = &ref
				specs = append(specs, spec)
				continue
			}
		}
		spec.Value = raw
		specs = append(specs, spec)
	}
	// YAML maps are unordered; keep a stable declaration order by name.
	sortProperties(specs)
	return specs
}

func sortProperties(specs []PropertySpec) {
	for i := 1; i < len(specs); i++ {
		for j := i; j > 0 && specs[j].Name < specs[j-1].Name; j-- {
			specs[j], specs[j-1] = specs[j-1], specs[j]
		}
	}
}

// ParseRef parses a textual property reference. A bare name refers to the
// node's own cell; "parent.x", "root.x", and "Theme.accent" select the
// parent scope, the session root, or a global group (or node ID).
func ParseRef(s string) Ref {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return Ref{Scope: s[:i], Property: s[i+1:]}
	}
	return Ref{Property: s}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "group", "":
		return KindGroup, nil
	case "rect":
		return KindRect, nil
	case "text":
		return KindText, nil
	case "checkbox":
		return KindCheckbox, nil
	case "button":
		return KindButton, nil
	case "use":
		return KindUse, nil
	case "slot":
		return KindSlot, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

func parseRole(s string) Role {
	switch s {
	case "text":
		return RoleText
	case "button":
		return RoleButton
	case "checkbox":
		return RoleCheckbox
	}
	return RoleNone
}
