package uitest_test

import (
	"testing"

	"github.com/go-veld/veld/pkg/layout"
	"github.com/go-veld/veld/pkg/uitest"
)

// A YAML description should come up as a live, scriptable session.
func TestYAMLDescriptionRoundTrip(t *testing.T) {
	doc := []byte(`
entry: Main
globals:
  - name: Theme
    properties:
      accent: blue
components:
  - name: Main
    root:
      kind: group
      id: root
      properties:
        agreed: false
      children:
        - kind: text
          id: title
          properties:
            text: Settings
          accessible:
            role: text
            label: Title
            value-from: text
        - kind: checkbox
          id: agree
          properties:
            checked: {two-way: root.agreed}
          accessible:
            role: checkbox
            label: Agree
            checked-from: checked
            checkable: true
            focusable: true
`)
	h := uitest.NewHarnessYAML(t, doc)

	if got := h.Session().Globals().Cell("Theme", "accent").GetString(); got != "blue" {
		t.Errorf("global accent = %q", got)
	}
	if v, ok := h.ByLabel("Title").Value(); !ok || v != "Settings" {
		t.Errorf("title value = %q, %v", v, ok)
	}

	res := h.Layout()
	rect, ok := res.Rect(h.Find("agree"))
	if !ok {
		t.Fatal("checkbox missing from layout")
	}
	if !h.Click(layout.Point{X: rect.Left + 1, Y: rect.Top + 1}) {
		t.Fatal("click on the checkbox should activate it")
	}
	if !h.Session().Root().OwnCell("agreed").GetBool() {
		t.Error("two-way link from the description should carry the toggle to the root")
	}
}

func TestHarnessKeyboardDispatch(t *testing.T) {
	doc := []byte(`
entry: Main
components:
  - name: Main
    root:
      kind: checkbox
      id: box
      accessible:
        role: checkbox
        label: Box
        checked-from: checked
        checkable: true
        focusable: true
`)
	h := uitest.NewHarnessYAML(t, doc)
	box := h.Find("box")

	h.Session().Focus(box)
	h.Keys(uitest.KeySpace)
	if !box.OwnCell("checked").GetBool() {
		t.Error("Space on the focused checkbox should check it")
	}
}
