// Package uitest provides a test harness for driving live sessions the
// way a host application would: build a tree from a description, lay it
// out, and poke at it through the accessibility surface.
package uitest

import (
	"testing"

	"github.com/go-veld/veld/pkg/accessibility"
	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/layout"
	"github.com/go-veld/veld/pkg/runtime"
)

const (
	// DefaultTestWidth is the default logical width for the test viewport.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test viewport.
	DefaultTestHeight = 600
)

// Keys forwarded for dispatch through Keys.
const (
	KeySpace = accessibility.KeySpace
	KeyEnter = accessibility.KeyEnter
)

// Harness wraps one live session with the layout engine and the
// accessibility surface, plus fatal-on-error lookup helpers. All
// failures report through the test's *testing.T.
type Harness struct {
	t       *testing.T
	session *runtime.Session
	engine  *layout.Engine
	surface *accessibility.Surface
}

// NewHarness builds a session for the entry component and wires the
// harness around it. The session is torn down via t.Cleanup.
func NewHarness(t *testing.T, reg *compose.Registry, entry string) *Harness {
	t.Helper()
	session, err := runtime.BuildSession(reg, entry)
	if err != nil {
		t.Fatalf("uitest: build failed: %v", err)
	}
	t.Cleanup(session.Teardown)
	viewport := layout.Size{Width: DefaultTestWidth, Height: DefaultTestHeight}
	return &Harness{
		t:       t,
		session: session,
		engine:  layout.NewEngine(session),
		surface: accessibility.NewSurface(session, viewport),
	}
}

// NewHarnessYAML builds a session from a YAML description document.
func NewHarnessYAML(t *testing.T, doc []byte) *Harness {
	t.Helper()
	reg, entry, err := compose.LoadYAML(doc)
	if err != nil {
		t.Fatalf("uitest: description failed to load: %v", err)
	}
	return NewHarness(t, reg, entry)
}

// Session returns the live session.
func (h *Harness) Session() *runtime.Session {
	return h.session
}

// Surface returns the accessibility surface over the session.
func (h *Harness) Surface() *accessibility.Surface {
	return h.surface
}

// Find returns the instance with the given node ID, failing the test if
// it is absent.
func (h *Harness) Find(id string) *runtime.Instance {
	h.t.Helper()
	inst := h.session.Root().FindByID(id)
	if inst == nil {
		h.t.Fatalf("uitest: no instance with id %q", id)
	}
	return inst
}

// ByLabel returns the unique accessible element with the label, failing
// the test on zero or multiple matches.
func (h *Harness) ByLabel(label string) *accessibility.Handle {
	h.t.Helper()
	handle, err := h.surface.FindUniqueLabel(label)
	if err != nil {
		h.t.Fatalf("uitest: %v", err)
	}
	return handle
}

// Layout runs a layout pass over the default viewport.
func (h *Harness) Layout() *layout.Result {
	h.t.Helper()
	res, err := h.engine.Layout(layout.Size{Width: DefaultTestWidth, Height: DefaultTestHeight})
	if err != nil {
		h.t.Fatalf("uitest: layout failed: %v", err)
	}
	return res
}

// Click dispatches a mouse click at the point.
func (h *Harness) Click(p layout.Point) bool {
	h.t.Helper()
	activated, err := h.surface.SendMouseClick(p)
	if err != nil {
		h.t.Fatalf("uitest: click failed: %v", err)
	}
	return activated
}

// Keys dispatches a keyboard sequence to the focused element.
func (h *Harness) Keys(keys ...string) {
	h.t.Helper()
	if err := h.surface.SendKeyboardSequence(keys...); err != nil {
		h.t.Fatalf("uitest: key dispatch failed: %v", err)
	}
}

// Refresh resynchronizes conditionals and repeaters.
func (h *Harness) Refresh() {
	h.t.Helper()
	if err := h.session.Refresh(); err != nil {
		h.t.Fatalf("uitest: refresh failed: %v", err)
	}
}

// InitRecorder collects init-hook firing order across a build.
type InitRecorder struct {
	Trace []string
}

// Hook returns an init hook that appends the given name when it fires.
func (r *InitRecorder) Hook(name string) compose.InitHook {
	return func(compose.InstanceAccess) {
		r.Trace = append(r.Trace, name)
	}
}
