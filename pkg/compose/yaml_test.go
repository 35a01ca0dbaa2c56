package compose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDoc = `
entry: Main
globals:
  - name: Theme
    properties:
      accent: blue
components:
  - name: Main
    params:
      - name: title
        default: untitled
    root:
      kind: group
      id: root
      children:
        - kind: text
          id: heading
          properties:
            text: hello
          accessible:
            role: text
            label: heading
        - kind: checkbox
          id: check
          properties:
            checked: {two-way: root.is-checked}
          accessible:
            role: checkbox
            label: Accept
            checkable: true
            checked-from: checked
            focusable: true
`

func TestLoadYAML(t *testing.T) {
	reg, entry, err := LoadYAML([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if entry != "Main" {
		t.Errorf("entry = %q, want %q", entry, "Main")
	}

	main := reg.Component("Main")
	if main == nil {
		t.Fatal("Main component missing from registry")
	}
	if diff := cmp.Diff([]ParamSpec{{Name: "title", Default: "untitled"}}, main.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if len(main.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(main.Root.Children))
	}

	check := main.Root.Children[1]
	if check.Kind != KindCheckbox {
		t.Errorf("second child kind = %s, want checkbox", check.Kind)
	}
	if check.Accessible == nil || check.Accessible.Role != RoleCheckbox || !check.Accessible.Checkable {
		t.Error("checkbox accessible metadata not loaded")
	}
	if len(check.Properties) != 1 || check.Properties[0].TwoWay == nil {
		t.Fatal("two-way property not loaded")
	}
	want := Ref{Scope: "root", Property: "is-checked"}
	if diff := cmp.Diff(want, *check.Properties[0].TwoWay); diff != "" {
		t.Errorf("two-way ref mismatch (-want +got):\n%s", diff)
	}

	if len(reg.Globals()) != 1 || reg.Globals()[0].Name != "Theme" {
		t.Error("Theme global not loaded")
	}
}

func TestLoadYAMLRejectsMissingEntry(t *testing.T) {
	if _, _, err := LoadYAML([]byte("components: []")); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestLoadYAMLRejectsUnknownKind(t *testing.T) {
	doc := `
entry: Main
components:
  - name: Main
    root:
      kind: sprocket
`
	if _, _, err := LoadYAML([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown node kind")
	}
}

func TestLoadYAMLValidates(t *testing.T) {
	doc := `
entry: Main
components:
  - name: Main
    root:
      kind: use
      component: Missing
`
	if _, _, err := LoadYAML([]byte(doc)); err == nil {
		t.Fatal("expected validation error for unknown component reference")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"width", Ref{Property: "width"}},
		{"parent.width", Ref{Scope: "parent", Property: "width"}},
		{"root.is-checked", Ref{Scope: "root", Property: "is-checked"}},
		{"Theme.accent", Ref{Scope: "Theme", Property: "accent"}},
	}
	for _, tt := range tests {
		if got := ParseRef(tt.in); got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
